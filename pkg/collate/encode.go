package collate

import (
	"math"
	"strconv"
)

const terminator byte = 0x00

// Encode 将 v 编码为可按字节序排序的键。
func Encode(v Value) ([]byte, error) {
	return Append(nil, v)
}

// Append 将 v 的编码追加到 dst 末尾并返回新切片。出错时 dst 的内容不受影响。
//
//	Null   -> '1' NUL
//	Bool   -> '2' ('1'|'0') NUL
//	Number -> '3' NumberToSortable(n) NUL，NaN/±Inf 按 Null 编码
//	String -> '4' escape(s) NUL
//	List   -> '5' Encode(e)... NUL
//	Map    -> '6' (Encode(String(k)) Encode(v))... NUL
func Append(dst []byte, v Value) ([]byte, error) {
	out, err := appendValue(dst, v)
	if err != nil {
		return dst, err
	}
	return out, nil
}

func appendValue(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, KindNull.tag(), terminator), nil

	case KindBool:
		payload := byte('0')
		if v.boolean {
			payload = '1'
		}
		return append(dst, KindBool.tag(), payload, terminator), nil

	case KindNumber:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return append(dst, KindNull.tag(), terminator), nil
		}
		dst = append(dst, KindNumber.tag())
		dst = appendSortable(dst, v.f)
		return append(dst, terminator), nil

	case KindString:
		return appendString(dst, v.str), nil

	case KindList:
		dst = append(dst, KindList.tag())
		for _, e := range v.list {
			var err error
			if dst, err = appendValue(dst, e); err != nil {
				return nil, err
			}
		}
		return append(dst, terminator), nil

	case KindMap:
		dst = append(dst, KindMap.tag())
		for _, e := range v.entries {
			dst = appendString(dst, e.Key)
			var err error
			if dst, err = appendValue(dst, e.Value); err != nil {
				return nil, err
			}
		}
		return append(dst, terminator), nil

	default:
		return nil, newUnsupportedType("collate.Value(kind=" + strconv.Itoa(int(v.kind)) + ")")
	}
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, KindString.tag())
	dst = appendEscaped(dst, s)
	return append(dst, terminator)
}

// Marshal 通过 FromAny 转换任意 Go 值后编码。
func Marshal(v any) ([]byte, error) {
	value, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return Encode(value)
}
