package collate

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collationOrder 按排序规则严格递增。
var collationOrder = []Value{
	Null(),
	Bool(false),
	Bool(true),
	Int(-300),
	Int(-200),
	Int(-100),
	Int(-10),
	Float(-2.5),
	Int(-2),
	Float(-1.5),
	Int(-1),
	Float(-0.5),
	Float(-0.0001),
	Int(0),
	Float(0.0001),
	Float(0.1),
	Float(0.5),
	Int(1),
	Float(1.5),
	Int(2),
	Int(3),
	Int(10),
	Int(15),
	Int(100),
	Int(200),
	Int(300),
	String(""),
	String("\x00"),
	String("\x00\x00"),
	String("\x01"),
	String("\x02"),
	String("1"),
	String("10"),
	String("100"),
	String("2"),
	String("20"),
	String("[]"),
	String("foo"),
	String("mo"),
	String("moe"),
	String("moz"),
	String("mozilla"),
	String("mozilla with a super long string see how far it can go"),
	String("mozzy"),
	String("é"),
	List(),
	List(Null()),
	List(Null(), Null()),
	List(Null(), String("foo")),
	List(Bool(false)),
	List(Bool(false), Int(100)),
	List(Bool(true)),
	List(Bool(true), Int(100)),
	List(Int(0)),
	List(Int(0), Null()),
	List(Int(0), Int(1)),
	List(Int(0), String("")),
	List(Int(0), String("foo")),
	List(String(""), String("")),
	List(String("foo")),
	List(String("foo"), Int(1)),
	List(List()),
	Map(),
	Map(Entry{"0", Null()}),
	Map(Entry{"0", Bool(false)}),
	Map(Entry{"0", Bool(true)}),
	Map(Entry{"0", Int(0)}),
	Map(Entry{"0", Int(1)}),
	Map(Entry{"0", String("bar")}),
	Map(Entry{"0", String("foo")}),
	Map(Entry{"0", String("foo")}, Entry{"1", Bool(false)}),
	Map(Entry{"0", String("foo")}, Entry{"1", Bool(true)}),
	Map(Entry{"0", String("foo")}, Entry{"1", Int(0)}),
	Map(Entry{"0", String("foo")}, Entry{"1", String("0")}),
	Map(Entry{"0", String("foo")}, Entry{"1", String("bar")}),
	Map(Entry{"0", String("quux")}),
	Map(Entry{"1", String("foo")}),
}

func TestCompareOrder(t *testing.T) {
	for i, a := range collationOrder {
		ea, err := Encode(a)
		require.NoError(t, err)
		for j, b := range collationOrder {
			eb, err := Encode(b)
			require.NoError(t, err)

			want := sign(i - j)
			assert.Equal(t, want, Compare(a, b), "Compare(%s, %s)", a, b)
			assert.Equal(t, want, CompareEncoded(ea, eb), "CompareEncoded(%s, %s)", a, b)
		}
	}
}

func TestTypeOrder(t *testing.T) {
	values := []Value{Null(), Bool(false), Int(0), String(""), List(), Map()}
	for i := 1; i < len(values); i++ {
		prev, err := Encode(values[i-1])
		require.NoError(t, err)
		cur, err := Encode(values[i])
		require.NoError(t, err)
		assert.Negative(t, CompareEncoded(prev, cur), "%s < %s", values[i-1], values[i])
		assert.Negative(t, Compare(values[i-1], values[i]))
	}
}

func TestCompareNonFiniteAsNull(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := Float(f)
		assert.Zero(t, Compare(v, Null()))
		assert.Negative(t, Compare(v, Bool(false)))

		enc, err := Encode(v)
		require.NoError(t, err)
		assert.Equal(t, "1\x00", string(enc))

		back, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, KindNull, back.Kind())
	}
}

func TestCompareRandomNumbers(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a := randomNumber(r)
		b := randomNumber(r)
		ea, err := Encode(a)
		require.NoError(t, err)
		eb, err := Encode(b)
		require.NoError(t, err)
		assert.Equal(t, Compare(a, b), CompareEncoded(ea, eb), "%s vs %s", a, b)
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v := randomValue(r, 0)
		enc, err := Encode(v)
		require.NoError(t, err)
		back, err := Decode(enc)
		require.NoError(t, err)
		// 顶层的空列表与单元素列表也必须原样还原。
		require.True(t, v.Equal(back), "want %s, got %s", v, back)
	}
}

// randomNumber 生成有效数字不超过 6 位的数，避免 10-F 带来的精度并列。
func randomNumber(r *rand.Rand) Value {
	switch r.Intn(3) {
	case 0:
		return Int(r.Int63n(2_000_001) - 1_000_000)
	case 1:
		return Float(float64(r.Intn(1_999_999)-999_999) / 1000)
	default:
		mant := float64(r.Intn(999_999)+1) / 100_000
		exp := r.Intn(200) - 100
		f := mant * math.Pow(10, float64(exp))
		if r.Intn(2) == 0 {
			f = -f
		}
		// 截断到 6 位有效数字，消除乘法带来的尾差。
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', 6, 64), 64)
		return Float(f)
	}
}

var randomStrings = []string{"", "a", "ab", "b", "\x00", "\x01", "\x02", "a\x00b", "é", "mozilla"}

func randomValue(r *rand.Rand, depth int) Value {
	n := 4
	if depth < 3 {
		n = 6
	}
	switch r.Intn(n) {
	case 0:
		return Null()
	case 1:
		return Bool(r.Intn(2) == 0)
	case 2:
		return randomNumber(r)
	case 3:
		return String(randomStrings[r.Intn(len(randomStrings))])
	case 4:
		elems := make([]Value, r.Intn(4))
		for i := range elems {
			elems[i] = randomValue(r, depth+1)
		}
		return List(elems...)
	default:
		entries := make([]Entry, r.Intn(4))
		for i := range entries {
			entries[i] = Entry{Key: randomStrings[r.Intn(len(randomStrings))], Value: randomValue(r, depth+1)}
		}
		return Map(entries...)
	}
}
