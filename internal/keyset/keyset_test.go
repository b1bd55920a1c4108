package keyset

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/log"
	"github.com/lk2023060901/collate-go/pkg/util/conc"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

type KeysetSuite struct {
	suite.Suite

	builder *Builder
}

func (s *KeysetSuite) SetupTest() {
	logger, _, err := log.InitTestLogger(s.T(), &log.Config{Level: "debug"})
	s.Require().NoError(err)
	ml := &log.MLogger{Logger: logger}
	b, err := NewBuilder(WithWorkers(4), WithLogger(ml.With(log.FieldModule("keyset-test"))))
	s.Require().NoError(err)
	s.builder = b
}

func (s *KeysetSuite) TearDownTest() {
	s.builder.Close()
}

func (s *KeysetSuite) TestSorted() {
	values := []collate.Value{
		collate.String("b"),
		collate.Int(10),
		collate.Null(),
		collate.List(collate.Int(1)),
		collate.Bool(true),
		collate.Int(2),
		collate.String("a"),
		collate.Map(),
	}
	entries, err := s.builder.Build(context.Background(), values)
	s.Require().NoError(err)
	s.Require().Len(entries, len(values))

	var order []int
	for _, e := range entries {
		order = append(order, e.Index)
		s.True(values[e.Index].Equal(e.Value))
	}
	s.Equal([]int{2, 4, 5, 1, 6, 0, 3, 7}, order)
}

func (s *KeysetSuite) TestStableAndDedup() {
	values := []collate.Value{
		collate.String("x"),
		collate.Int(1),
		collate.String("x"),
		collate.Float(1),
		collate.String("a"),
	}
	entries, err := s.builder.Build(context.Background(), values)
	s.Require().NoError(err)

	var order []int
	for _, e := range entries {
		order = append(order, e.Index)
	}
	s.Equal([]int{1, 3, 4, 0, 2}, order)

	deduped := Dedup(entries)
	s.Len(deduped, 3)
	s.Equal(1, deduped[0].Index)
	s.Equal(4, deduped[1].Index)
	s.Equal(0, deduped[2].Index)
	s.Len(Keys(deduped), 3)
}

func (s *KeysetSuite) TestErrorsCombined() {
	values := []collate.Value{collate.Int(1), {}, collate.String("ok"), collate.List(collate.Value{})}
	entries, err := s.builder.Build(context.Background(), values)
	s.Nil(entries)
	s.ErrorIs(err, merr.ErrUnsupportedType)
	s.Contains(err.Error(), "value #1")
	s.Contains(err.Error(), "value #3")
}

func (s *KeysetSuite) TestCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.builder.Build(ctx, []collate.Value{collate.Null()})
	s.ErrorIs(err, context.Canceled)
}

func (s *KeysetSuite) TestEmpty() {
	entries, err := s.builder.Build(context.Background(), nil)
	s.NoError(err)
	s.Empty(entries)
}

func TestKeysetSuite(t *testing.T) {
	suite.Run(t, new(KeysetSuite))
}

func TestBuildMatchesCompare(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	values := make([]collate.Value, 300)
	for i := range values {
		switch r.Intn(3) {
		case 0:
			values[i] = collate.Int(r.Int63n(1000) - 500)
		case 1:
			values[i] = collate.String(string(rune('a' + r.Intn(26))))
		default:
			values[i] = collate.List(collate.Int(r.Int63n(10)), collate.Bool(r.Intn(2) == 0))
		}
	}

	entries, err := Build(context.Background(), values)
	require.NoError(t, err)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, collate.Compare(entries[i-1].Value, entries[i].Value), 0)
	}
}

func TestBuildPoolOptions(t *testing.T) {
	var started atomic.Int32
	values := []collate.Value{collate.Int(2), collate.Null(), collate.String("a")}
	entries, err := Build(context.Background(), values,
		WithWorkers(2),
		WithPoolOptions(conc.WithPreHandler(func() { started.Add(1) })),
	)
	require.NoError(t, err)
	assert.Equal(t, int32(len(values)), started.Load())
	assert.Equal(t, []int{1, 0, 2}, []int{entries[0].Index, entries[1].Index, entries[2].Index})
}
