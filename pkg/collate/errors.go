package collate

import (
	"fmt"
	"reflect"

	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// UnsupportedTypeError 表示待编码的值不属于六种可编码类型。
// 它包装 merr.ErrUnsupportedType，可通过 errors.Is 判断。
type UnsupportedTypeError struct {
	TypeName string
	err      error
}

func newUnsupportedType(typeName string) error {
	return &UnsupportedTypeError{
		TypeName: typeName,
		err:      merr.WrapErrUnsupportedType(typeName),
	}
}

func unsupportedGoType(t reflect.Type) error {
	if t == nil {
		return newUnsupportedType("<nil>")
	}
	return newUnsupportedType(t.String())
}

func (e *UnsupportedTypeError) Error() string { return e.err.Error() }

func (e *UnsupportedTypeError) Unwrap() error { return e.err }

// MalformedEncodingError 表示输入不是合法的编码：缺少终止符、未知类型标签或数据被截断。
// 它包装 merr.ErrMalformedEncoding，可通过 errors.Is 判断。
type MalformedEncodingError struct {
	// Offset 为发现问题的字节偏移。
	Offset int
	// Byte 为 Offset 处的字节，偏移越界时为 -1。
	Byte int
	// Context 为从 Offset 开始的若干原始字节。
	Context []byte
	Reason  string
	err     error
}

const contextBytes = 16

func newMalformed(data []byte, offset int, reason string) error {
	e := &MalformedEncodingError{
		Offset: offset,
		Byte:   -1,
		Reason: reason,
	}
	if offset >= 0 && offset < len(data) {
		e.Byte = int(data[offset])
		end := min(offset+contextBytes, len(data))
		e.Context = append([]byte(nil), data[offset:end]...)
	}
	e.err = merr.WrapErrMalformedEncoding(offset, e.Context, reason)
	return e
}

func newMalformedf(data []byte, offset int, format string, args ...any) error {
	return newMalformed(data, offset, fmt.Sprintf(format, args...))
}

func (e *MalformedEncodingError) Error() string { return e.err.Error() }

func (e *MalformedEncodingError) Unwrap() error { return e.err }
