package serializer

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// CollateSerializer 使用可排序编码进行序列化。
//
// Marshal 接受 collate.FromAny 支持的所有类型以及 *structpb.Value；
// Unmarshal 的目标可以是 *collate.Value、*any 或 *structpb.Value。
type CollateSerializer struct{}

// 编译期断言：确保 CollateSerializer 实现了 Serializer 接口。
var _ Serializer = (*CollateSerializer)(nil)

func (CollateSerializer) Marshal(v any) ([]byte, error) {
	data, err := marshalCollate(v)
	observe(FormatCollate, metrics.MarshalOp, err)
	if err != nil {
		return nil, err
	}
	metrics.EncodedKeyBytes.Observe(float64(len(data)))
	return data, nil
}

func marshalCollate(v any) ([]byte, error) {
	if sv, ok := v.(*structpb.Value); ok {
		val, err := FromStructValue(sv)
		if err != nil {
			return nil, err
		}
		return collate.Encode(val)
	}
	return collate.Marshal(v)
}

func (CollateSerializer) Unmarshal(data []byte, v any) error {
	err := unmarshalCollate(data, v)
	observe(FormatCollate, metrics.UnmarshalOp, err)
	return err
}

func unmarshalCollate(data []byte, v any) error {
	val, err := collate.Decode(data)
	if err != nil {
		return err
	}
	return assignValue(val, v)
}

// assignValue 将解码得到的 val 写入目标指针。
func assignValue(val collate.Value, v any) error {
	switch t := v.(type) {
	case *collate.Value:
		if t == nil {
			return merr.WrapErrParameterMissing("target")
		}
		*t = val
	case *any:
		if t == nil {
			return merr.WrapErrParameterMissing("target")
		}
		*t = val.Interface()
	case *structpb.Value:
		if t == nil {
			return merr.WrapErrParameterMissing("target")
		}
		sv, err := ToStructValue(val)
		if err != nil {
			return err
		}
		proto.Reset(t)
		proto.Merge(t, sv)
	default:
		return merr.WrapErrParameterInvalidMsg("unsupported unmarshal target %T", v)
	}
	return nil
}
