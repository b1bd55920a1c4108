// Package keyfile 读写按序排列的可排序键文件。
//
// 文件由若干长度前缀帧组成：第一帧是头部 "collate-keyfile/<semver>"，
// 之后每帧为 1 字节标志位加一个编码后的键，标志位 flagCompressed 表示键经过 zstd 压缩。
package keyfile

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/blang/semver/v4"
	"go.uber.org/zap"

	"github.com/lk2023060901/collate-go/internal/compressor"
	"github.com/lk2023060901/collate-go/internal/framer"
	"github.com/lk2023060901/collate-go/pkg/log"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

const (
	headerPrefix = "collate-keyfile/"

	flagPlain      byte = 0x00
	flagCompressed byte = 0x01
)

// Version 是当前写入的文件格式版本，读取时只要求主版本一致。
var Version = semver.MustParse("1.0.0")

// Options 控制写入行为。
type Options struct {
	// Compress 为 true 时使用 zstd 压缩长度不小于 MinCompressSize 的键。
	Compress        bool
	MinCompressSize int
	// MaxFrameSize 为单帧允许的最大字节数，0 表示使用默认值。
	MaxFrameSize uint32
}

// Writer 将键依次写入底层流。
type Writer struct {
	w      io.Writer
	framer *framer.LengthPrefixedFramer
	comp   compressor.Compressor
	closer func()
	buf    []byte
	count  int
	closed bool
}

// NewWriter 写入文件头并返回 Writer。
func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	kw := &Writer{
		w:      w,
		framer: framer.NewLengthPrefixedFramer(opts.MaxFrameSize),
		comp:   compressor.NopCompressor{},
	}
	if opts.Compress {
		zc, err := compressor.NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		zc.SetMinCompressSize(opts.MinCompressSize)
		kw.comp = zc
		kw.closer = zc.Close
	}

	if err := kw.framer.WriteFrame(w, []byte(headerPrefix+Version.String())); err != nil {
		kw.release()
		return nil, err
	}
	return kw, nil
}

// Append 写入一个编码后的键。
func (kw *Writer) Append(key []byte) error {
	if kw.closed {
		return merr.WrapErrOperationNotSupported("append", "keyfile writer is closed")
	}

	packet, compressed, err := kw.comp.Compress(kw.buf, key)
	if err != nil {
		return err
	}
	flag := flagPlain
	if compressed {
		flag = flagCompressed
		kw.buf = packet[:0]
	}

	frame := make([]byte, 0, len(packet)+1)
	frame = append(frame, flag)
	frame = append(frame, packet...)
	if err := kw.framer.WriteFrame(kw.w, frame); err != nil {
		return err
	}
	kw.count++
	metrics.KeyfileFrames.WithLabelValues("write").Inc()
	return nil
}

// Count 返回已写入的键数量。
func (kw *Writer) Count() int {
	return kw.count
}

// Close 释放压缩器，不关闭底层流。
func (kw *Writer) Close() error {
	if kw.closed {
		return nil
	}
	kw.closed = true
	kw.release()
	log.Debug("keyfile writer closed", zap.Int("keys", kw.count))
	return nil
}

func (kw *Writer) release() {
	if kw.closer != nil {
		kw.closer()
		kw.closer = nil
	}
}

// Reader 依次读取键文件中的键。
type Reader struct {
	r       io.Reader
	framer  *framer.LengthPrefixedFramer
	dec     *compressor.ZstdCompressor
	version semver.Version
	frame   []byte
}

// NewReader 读取并校验文件头。主版本不一致时返回 ErrKeyfileVersion。
func NewReader(r io.Reader, maxFrameSize uint32) (*Reader, error) {
	kr := &Reader{
		r:      r,
		framer: framer.NewLengthPrefixedFramer(maxFrameSize),
	}
	header, err := kr.framer.ReadFrame(r, nil)
	if err == io.EOF {
		return nil, merr.WrapErrIoUnexpectEOF("keyfile header", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, err
	}

	text := string(header)
	if !strings.HasPrefix(text, headerPrefix) {
		return nil, merr.WrapErrKeyfileVersion(headerPrefix+Version.String(), text, "not a keyfile")
	}
	v, err := semver.Parse(strings.TrimPrefix(text, headerPrefix))
	if err != nil {
		return nil, merr.WrapErrKeyfileVersion(Version.String(), text, err.Error())
	}
	if v.Major != Version.Major {
		return nil, merr.WrapErrKeyfileVersion(Version.String(), v.String())
	}
	kr.version = v
	return kr, nil
}

// Version 返回文件头中记录的格式版本。
func (kr *Reader) Version() semver.Version {
	return kr.version
}

// Next 返回下一个键，读完时返回 io.EOF。返回的切片在下一次调用前有效。
func (kr *Reader) Next() ([]byte, error) {
	frame, err := kr.framer.ReadFrame(kr.r, kr.frame)
	if err != nil {
		return nil, err
	}
	kr.frame = frame
	if len(frame) == 0 {
		return nil, merr.WrapErrIoFailedReason("empty keyfile frame")
	}
	metrics.KeyfileFrames.WithLabelValues("read").Inc()

	switch frame[0] {
	case flagPlain:
		return frame[1:], nil
	case flagCompressed:
		if kr.dec == nil {
			kr.dec, err = compressor.NewZstdCompressorWithConcurrency(1)
			if err != nil {
				return nil, err
			}
		}
		return kr.dec.Decompress(nil, frame[1:])
	default:
		return nil, merr.WrapErrIoFailedReason("unknown keyfile frame flag " + strconv.Itoa(int(frame[0])))
	}
}

// ReadAll 读取剩余的全部键。
func (kr *Reader) ReadAll() ([][]byte, error) {
	var keys [][]byte
	for {
		key, err := kr.Next()
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			return keys, err
		}
		keys = append(keys, bytes.Clone(key))
	}
}

// Close 释放解压器。
func (kr *Reader) Close() {
	if kr.dec != nil {
		kr.dec.Close()
		kr.dec = nil
	}
}
