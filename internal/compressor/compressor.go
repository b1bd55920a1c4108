package compressor

// Compressor 抽象了“单次压缩/解压”能力，用于 keyfile 中单个键的压缩。
//
// 不做全局单例，调用方按需创建具体实现的实例。
type Compressor interface {
	// Compress 将 src 压缩到 dst。
	//
	// dst 一般可以传入一个可复用的缓冲区（长度可为 0），实现可选择复用其底层容量；
	// 返回值 packet 为压缩后的完整数据。ok 为 false 时 packet 即 src 本身，未做压缩。
	Compress(dst, src []byte) (packet []byte, ok bool, err error)

	// Decompress 将压缩数据 src 解压到 dst。
	//
	// src 必须是 Compress 在 ok 为 true 时的输出。
	Decompress(dst, src []byte) (plain []byte, err error)
}

// NopCompressor 是一个空实现：不做任何压缩/解压，直接返回输入内容。
type NopCompressor struct{}

func (NopCompressor) Compress(_ []byte, src []byte) ([]byte, bool, error) {
	return src, false, nil
}

func (NopCompressor) Decompress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

// 编译期断言：确保 NopCompressor 实现了 Compressor 接口。
var _ Compressor = NopCompressor{}
