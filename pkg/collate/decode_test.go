package collate

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

func TestDecodeNoTerminator(t *testing.T) {
	for _, in := range []string{"", "not a serialized string", "4foo", "5323241"} {
		_, err := Decode([]byte(in))
		require.Error(t, err, "input=%q", in)
		assert.ErrorIs(t, err, merr.ErrMalformedEncoding)

		var me *MalformedEncodingError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "no terminator found", me.Reason)
		assert.Equal(t, 0, me.Offset)
		assert.Contains(t, err.Error(), "no terminator found")
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		offset int
		reason string
	}{
		{"unknown tag", "7\x00", 0, "unknown type tag"},
		{"zero tag", "0\x00", 0, "unknown type tag"},
		{"nested unknown tag", "51\x009\x00\x00", 3, "unknown type tag"},
		{"bool without payload", "2\x00", 1, "missing boolean payload"},
		{"bool truncated", "1\x0021", 4, "truncated value"},
		{"null with payload", "1x\x00", 1, "expected terminator"},
		{"bool with two bytes", "211\x00", 2, "expected terminator"},
		{"unterminated list", "51\x00", 3, "unterminated list"},
		{"unterminated map", "64foo\x0021\x00", 9, "unterminated map"},
		{"map with odd items", "64foo\x00\x00", 0, "map has a key without value"},
		{"map with number key", "631\x0021\x00\x00", 0, "map key #0 is number, not string"},
		{"bad escape", "4a\x01x\x00", 2, "invalid escape sequence"},
		{"bad number", "3x\x00", 1, "bad number sign"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode([]byte(c.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, merr.ErrMalformedEncoding)
			assert.False(t, merr.IsRetryableErr(err))
			assert.Equal(t, merr.InputError, merr.GetErrorType(err))

			var me *MalformedEncodingError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, c.offset, me.Offset)
			assert.True(t, strings.HasPrefix(me.Reason, c.reason), "reason %q", me.Reason)
			if c.offset < len(c.in) {
				assert.Equal(t, int(c.in[c.offset]), me.Byte)
				assert.Equal(t, c.in[c.offset:], string(me.Context))
			} else {
				assert.Equal(t, -1, me.Byte)
			}
		})
	}
}

func TestDecodeTooDeep(t *testing.T) {
	in := strings.Repeat("5", MaxDepth+1) + strings.Repeat("\x00", MaxDepth+1)
	_, err := Decode([]byte(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, merr.ErrMalformedEncoding)

	in = strings.Repeat("5", MaxDepth) + strings.Repeat("\x00", MaxDepth)
	_, err = Decode([]byte(in))
	require.NoError(t, err)
}

func TestDecodeTopLevel(t *testing.T) {
	// 单个值直接返回，不包成列表。
	v, err := Decode([]byte("4foo\x00"))
	require.NoError(t, err)
	assert.Equal(t, KindString, v.Kind())

	// 顶层多个值作为列表返回。
	v, err = Decode([]byte("4foo\x0021\x00"))
	require.NoError(t, err)
	assert.True(t, List(String("foo"), Bool(true)).Equal(v))

	// 单元素列表与单个值可以区分。
	v, err = Decode([]byte("54foo\x00\x00"))
	require.NoError(t, err)
	assert.True(t, List(String("foo")).Equal(v))

	// 裸终止符结束顶层序列，且被消费。
	data := []byte("1\x00\x004bar\x00")
	cursor := 0
	v, err = DecodeAt(data, &cursor)
	require.NoError(t, err)
	assert.True(t, Null().Equal(v))
	assert.Equal(t, 3, cursor)

	v, err = DecodeAt(data, &cursor)
	require.NoError(t, err)
	assert.True(t, String("bar").Equal(v))
	assert.Equal(t, len(data), cursor)

	// 只有一个裸终止符时得到空列表。
	v, err = Decode([]byte("\x00"))
	require.NoError(t, err)
	assert.Equal(t, KindList, v.Kind())
	assert.Zero(t, v.Len())
}

func TestDecodeBoolPayload(t *testing.T) {
	v, err := Decode([]byte("2x\x00"))
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestDecodeCursorOutOfRange(t *testing.T) {
	cursor := 10
	_, err := DecodeAt([]byte("1\x00"), &cursor)
	assert.ErrorIs(t, err, merr.ErrMalformedEncoding)
}
