package collate

import (
	"math"
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

func TestNumberToSortable(t *testing.T) {
	cases := []struct {
		n    float64
		want string
	}{
		{0, "1"},
		{math.Copysign(0, -1), "1"},
		{67, "23256.70000000000000017764"},
		{-1, "03249"},
		{1470736200, "23331.47073619999999993802"},
		{-1470736200, "03158.52926380000000072812"},
		{1, "23241"},
		{9, "23249"},
		{-9, "03241"},
		{10, "23251"},
		{-10, "03239"},
		{0.1, "23231"},
		{-0.1, "03259"},
		{-0.01, "03269"},
		{15, "23251.5"},
		{-2.5, "03247.5"},
		{-1.5, "03248.5"},
		{-0.0001, "03289"},
		{0.0001, "23201"},
		{1e23, "23471"},
		{1.7976931348623157e308, "26321.79769313486231574473"},
		{-1.7976931348623157e308, "00168.20230686513768425527"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NumberToSortable(c.n), "n=%v", c.n)
	}

	assert.Empty(t, NumberToSortable(math.NaN()))
	assert.Empty(t, NumberToSortable(math.Inf(1)))
	assert.Empty(t, NumberToSortable(math.Inf(-1)))
}

func TestNumberToSortableOrder(t *testing.T) {
	nums := []float64{
		-math.MaxFloat64, -1e300, -1470736200, -300, -200, -100, -30, -20, -10,
		-2.5, -2, -1.5, -1, -0.5, -0.1, -0.01, -0.0001, -5e-324,
		0,
		5e-324, 1e-300, 0.0001, 0.1, 0.5, 1, 1.5, 2, 3, 9, 10, 15, 67, 100, 200, 300,
		1470736200, 1e23, 1e300, math.MaxFloat64,
	}
	require.True(t, slices.IsSorted(nums))
	for i := 1; i < len(nums); i++ {
		prev, cur := NumberToSortable(nums[i-1]), NumberToSortable(nums[i])
		assert.Less(t, prev, cur, "%v should sort before %v", nums[i-1], nums[i])
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		n     float64
		isInt bool
	}{
		{0, true},
		{67, true},
		{-1, true},
		{1470736200, true},
		{-1470736200, true},
		{0.1, false},
		{-0.1, false},
		{-2.5, false},
		{123.456, false},
		{-123.456, false},
		{1e23, false},
		{0.3, false},
		{1.7976931348623157e308, false},
		{-1.7976931348623157e308, false},
		{5e-324, false},
		{-5e-324, false},
	}
	for _, c := range cases {
		data := append([]byte(NumberToSortable(c.n)), terminator)
		cursor := 0
		v, err := ParseNumber(data, &cursor)
		require.NoError(t, err, "n=%v", c.n)
		assert.Equal(t, len(data)-1, cursor, "cursor stops on the terminator")
		assert.Equal(t, c.n, v.AsFloat(), "n=%v", c.n)
		assert.Equal(t, c.isInt, v.IsInt(), "n=%v", c.n)
	}
}

func TestParseNumberRoundTripShortDecimals(t *testing.T) {
	for _, s := range []float64{
		1.25, -1.25, 3.14159, -3.14159, 299792458, -299792458, 6.02214076e23,
		-6.02214076e23, 1.602176634e-19, -1.602176634e-19, 987654321.123456,
		-987654321.123456, 123456789012345, -123456789012345,
	} {
		data := append([]byte(NumberToSortable(s)), terminator)
		cursor := 0
		v, err := ParseNumber(data, &cursor)
		require.NoError(t, err)
		assert.Equal(t, s, v.AsFloat())
	}
}

func TestParseNumberMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"bad sign":       []byte("3123\x00"),
		"short exponent": []byte("23"),
		"bad exponent":   []byte("2a241\x00"),
		"no terminator":  []byte("23241"),
		"empty mantissa": []byte("2324\x00"),
		"bad mantissa":   []byte("2324x\x00"),
		"two dots":       []byte("23241..5\x00"),
		"two int digits": []byte("232411\x00"),
		"trailing dot":   []byte("23241.\x00"),
		"trailing zero":  []byte("23241.50\x00"),
		"leading dot":    []byte("2324.5\x00"),
		"overflow":       []byte("29999\x00"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			cursor := 0
			_, err := ParseNumber(data, &cursor)
			require.Error(t, err)
			assert.ErrorIs(t, err, merr.ErrMalformedEncoding)
			var me *MalformedEncodingError
			assert.True(t, errors.As(err, &me))
			assert.Equal(t, 0, cursor, "cursor is untouched on failure")
		})
	}
}

func TestParseNumberRoundTripFifteenDigits(t *testing.T) {
	r := rand.New(rand.NewSource(15))
	for i := 0; i < 20000; i++ {
		// 15 位有效数字，覆盖正规数范围内的指数。
		mant := r.Int63n(9e14) + 1e14
		s := strconv.FormatInt(mant, 10)
		s = s[:1] + "." + s[1:] + "e" + strconv.Itoa(r.Intn(600)-300)
		if i%2 == 0 {
			s = "-" + s
		}
		n, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)

		data := append([]byte(NumberToSortable(n)), terminator)
		cursor := 0
		v, err := ParseNumber(data, &cursor)
		require.NoError(t, err, "n=%s", s)
		require.Equal(t, n, v.AsFloat(), "n=%s", s)
	}
}
