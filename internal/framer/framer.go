package framer

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// Framer 抽象了字节负载的打包/解包能力。
//
// 一帧数据的格式为：4 字节大端无符号整型（表示后续负载长度）+ 负载本身。
type Framer interface {
	// WriteFrame 将 payload 打包为一帧并写入到 w 中。
	WriteFrame(w io.Writer, payload []byte) error

	// ReadFrame 从 r 中读取一帧，将负载追加到 dst[:0] 后返回。
	// 流在帧边界处结束时返回 io.EOF。
	ReadFrame(r io.Reader, dst []byte) ([]byte, error)
}

// LengthPrefixedFramer 使用长度前缀（4 字节大端）作为帧边界。
type LengthPrefixedFramer struct {
	// MaxFrameSize 为允许的最大负载长度，单位字节。
	// 为 0 时使用默认值 DefaultMaxFrameSize。
	MaxFrameSize uint32
}

// DefaultMaxFrameSize 为默认的最大帧大小。
const DefaultMaxFrameSize uint32 = 16 * 1024 * 1024 // 16MB

const headerSize = 4

// 编译期断言：确保 LengthPrefixedFramer 实现了 Framer 接口。
var _ Framer = (*LengthPrefixedFramer)(nil)

var framePool bytebufferpool.Pool

// NewLengthPrefixedFramer 创建一个长度前缀帧编码器。
// maxFrameSize 为 0 时使用默认值。
func NewLengthPrefixedFramer(maxFrameSize uint32) *LengthPrefixedFramer {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &LengthPrefixedFramer{
		MaxFrameSize: maxFrameSize,
	}
}

// WriteFrame 将 payload 编码为长度前缀帧，头部与负载合并为一次写入。
func (f *LengthPrefixedFramer) WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > uint64(f.effectiveMaxSize()) {
		return merr.WrapErrFrameTooLarge(uint32(min(uint64(len(payload)), 1<<32-1)), f.effectiveMaxSize())
	}

	buf := framePool.Get()
	defer framePool.Put(buf)

	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	_, _ = buf.Write(header[:])
	_, _ = buf.Write(payload)

	if _, err := w.Write(buf.B); err != nil {
		return merr.WrapErrIoFailed("frame", err)
	}
	return nil
}

// ReadFrame 从流中读取一帧数据。
func (f *LengthPrefixedFramer) ReadFrame(r io.Reader, dst []byte) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, readError("frame header", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > f.effectiveMaxSize() {
		return nil, merr.WrapErrFrameTooLarge(length, f.effectiveMaxSize())
	}

	buf := framePool.Get()
	defer framePool.Put(buf)

	if cap(buf.B) < int(length) {
		buf.B = make([]byte, int(length))
	} else {
		buf.B = buf.B[:int(length)]
	}
	if _, err := io.ReadFull(r, buf.B); err != nil {
		return nil, readError("frame body", err)
	}

	return append(dst[:0], buf.B...), nil
}

func readError(key string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return merr.WrapErrIoUnexpectEOF(key, err)
	}
	return merr.WrapErrIoFailed(key, err)
}

func (f *LengthPrefixedFramer) effectiveMaxSize() uint32 {
	if f == nil || f.MaxFrameSize == 0 {
		return DefaultMaxFrameSize
	}
	return f.MaxFrameSize
}
