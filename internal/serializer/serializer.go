package serializer

import (
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// Serializer 抽象了“对象 <-> 字节流”的序列化能力。
//
// 三种实现共享同一个值模型 collate.Value：
//   - CollateSerializer 产出可按字节排序的编码；
//   - JSONSerializer 产出保留键顺序的 JSON；
//   - ProtoSerializer 面向 protobuf 消息，并通过 structpb.Value 与 collate.Value 互转；
//   - CBORSerializer 产出确定性 CBOR。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

const (
	FormatCollate = "collate"
	FormatJSON    = "json"
	FormatProto   = "proto"
	FormatCBOR    = "cbor"
)

// ForFormat 按名称返回对应的 Serializer。
func ForFormat(name string) (Serializer, error) {
	switch name {
	case FormatCollate, "":
		return CollateSerializer{}, nil
	case FormatJSON:
		return JSONSerializer{}, nil
	case FormatProto:
		return ProtoSerializer{}, nil
	case FormatCBOR:
		return CBORSerializer{}, nil
	default:
		return nil, merr.WrapErrParameterInvalidMsg("unknown serializer format %q", name)
	}
}

func observe(format, op string, err error) {
	status := metrics.SuccessLabel
	if err != nil {
		status = metrics.FailLabel
	}
	metrics.CodecOps.WithLabelValues(format, op, status).Inc()
}
