package serializer

import (
	"math"
	"sort"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// ProtoSerializer 使用 Protobuf 进行二进制序列化。
//
// 注意：传入/传出的对象必须实现 proto.Message。collate.Value 需要先经 ToStructValue 转换。
type ProtoSerializer struct{}

// 编译期断言：确保 ProtoSerializer 实现了 Serializer 接口。
var _ Serializer = (*ProtoSerializer)(nil)

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		err := merr.WrapErrParameterInvalidMsg("ProtoSerializer requires proto.Message, got %T", v)
		observe(FormatProto, metrics.MarshalOp, err)
		return nil, err
	}
	data, err := proto.Marshal(msg)
	observe(FormatProto, metrics.MarshalOp, err)
	return data, err
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		err := merr.WrapErrParameterInvalidMsg("ProtoSerializer requires proto.Message, got %T", v)
		observe(FormatProto, metrics.UnmarshalOp, err)
		return err
	}
	err := proto.Unmarshal(data, msg)
	observe(FormatProto, metrics.UnmarshalOp, err)
	return err
}

// ToStructValue 将 collate.Value 转换为 structpb.Value。
// NaN 与 ±Inf 按 Null 处理，与可排序编码保持一致。
func ToStructValue(v collate.Value) (*structpb.Value, error) {
	switch v.Kind() {
	case collate.KindNull:
		return structpb.NewNullValue(), nil
	case collate.KindBool:
		return structpb.NewBoolValue(v.AsBool()), nil
	case collate.KindNumber:
		f := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return structpb.NewNullValue(), nil
		}
		return structpb.NewNumberValue(f), nil
	case collate.KindString:
		return structpb.NewStringValue(v.AsString()), nil
	case collate.KindList:
		values := make([]*structpb.Value, 0, v.Len())
		for _, e := range v.Elems() {
			sv, err := ToStructValue(e)
			if err != nil {
				return nil, err
			}
			values = append(values, sv)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case collate.KindMap:
		fields := make(map[string]*structpb.Value, v.Len())
		for _, e := range v.Entries() {
			sv, err := ToStructValue(e.Value)
			if err != nil {
				return nil, err
			}
			fields[e.Key] = sv
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	default:
		return nil, merr.WrapErrUnsupportedType("collate.Value(kind=" + v.Kind().String() + ")")
	}
}

// FromStructValue 将 structpb.Value 转换为 collate.Value。
// structpb.Struct 的字段无序，转换后的 Map 按键排序。
func FromStructValue(sv *structpb.Value) (collate.Value, error) {
	if sv == nil {
		return collate.Null(), nil
	}
	switch k := sv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return collate.Null(), nil
	case *structpb.Value_BoolValue:
		return collate.Bool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		return collate.Number(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return collate.String(k.StringValue), nil
	case *structpb.Value_ListValue:
		elems := make([]collate.Value, 0, len(k.ListValue.GetValues()))
		for _, e := range k.ListValue.GetValues() {
			val, err := FromStructValue(e)
			if err != nil {
				return collate.Value{}, err
			}
			elems = append(elems, val)
		}
		return collate.List(elems...), nil
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]collate.Entry, 0, len(keys))
		for _, key := range keys {
			val, err := FromStructValue(fields[key])
			if err != nil {
				return collate.Value{}, err
			}
			entries = append(entries, collate.Entry{Key: key, Value: val})
		}
		return collate.Map(entries...), nil
	default:
		return collate.Value{}, merr.WrapErrParameterInvalidMsg("structpb.Value without kind")
	}
}
