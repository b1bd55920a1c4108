package serializer

import (
	"reflect"
	"sync"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// CBORSerializer 使用确定性 CBOR（RFC 8949 core deterministic）编码。
//
// collate.Value 先转换为普通 Go 值再编码，Map 的键按 CBOR 规范重新排序；
// 解码到 *collate.Value 时 Map 的键按字典序排列。
type CBORSerializer struct{}

// 编译期断言：确保 CBORSerializer 实现了 Serializer 接口。
var _ Serializer = (*CBORSerializer)(nil)

var (
	cborOnce sync.Once
	cborEnc  cbor.EncMode
	cborDec  cbor.DecMode
	cborErr  error
)

func cborModes() (cbor.EncMode, cbor.DecMode, error) {
	cborOnce.Do(func() {
		cborEnc, cborErr = cbor.CoreDetEncOptions().EncMode()
		if cborErr != nil {
			return
		}
		cborDec, cborErr = cbor.DecOptions{
			DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
			MaxNestedLevels: collate.MaxDepth,
		}.DecMode()
	})
	return cborEnc, cborDec, cborErr
}

func (CBORSerializer) Marshal(v any) ([]byte, error) {
	data, err := marshalCBOR(v)
	observe(FormatCBOR, metrics.MarshalOp, err)
	return data, err
}

func marshalCBOR(v any) ([]byte, error) {
	enc, _, err := cborModes()
	if err != nil {
		return nil, merr.WrapErrServiceInternal(err.Error(), "cbor mode")
	}
	switch t := v.(type) {
	case collate.Value:
		if !t.IsValid() {
			return nil, merr.WrapErrUnsupportedType("collate.Value(kind=" + t.Kind().String() + ")")
		}
		return enc.Marshal(t.Interface())
	case *collate.Value:
		if t == nil {
			return enc.Marshal(nil)
		}
		return marshalCBOR(*t)
	default:
		return enc.Marshal(v)
	}
}

func (CBORSerializer) Unmarshal(data []byte, v any) error {
	err := unmarshalCBOR(data, v)
	observe(FormatCBOR, metrics.UnmarshalOp, err)
	return err
}

func unmarshalCBOR(data []byte, v any) error {
	_, dec, err := cborModes()
	if err != nil {
		return merr.WrapErrServiceInternal(err.Error(), "cbor mode")
	}
	t, ok := v.(*collate.Value)
	if !ok || t == nil {
		return dec.Unmarshal(data, v)
	}
	var raw any
	if err := dec.Unmarshal(data, &raw); err != nil {
		return merr.WrapErrParameterInvalidMsg("invalid cbor: %s", err.Error())
	}
	val, err := collate.FromAny(raw)
	if err != nil {
		return err
	}
	*t = val
	return nil
}
