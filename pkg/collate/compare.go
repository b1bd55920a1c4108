package collate

import (
	"bytes"
	"cmp"
	"strings"
)

// Compare 按排序规则比较两个值，返回 -1、0 或 1。
//
// 先比较类型（Null < Bool < Number < String < List < Map），同类型再比较内容：
// false < true；数值按大小；字符串按字节；List 逐元素比较后比较长度；
// Map 逐对比较键和值后比较长度。NaN 与 ±Inf 视为 Null。
//
// 对于在 21 位有效数字内可区分的数值，Compare 与 CompareEncoded(Encode(a), Encode(b)) 的符号一致。
func Compare(a, b Value) int {
	ka, kb := a.collationKind(), b.collationKind()
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case KindBool:
		switch {
		case a.boolean == b.boolean:
			return 0
		case b.boolean:
			return -1
		default:
			return 1
		}
	case KindNumber:
		if a.isInt && b.isInt {
			return cmp.Compare(a.i, b.i)
		}
		return cmp.Compare(a.f, b.f)
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindList:
		for i := 0; i < len(a.list) && i < len(b.list); i++ {
			if c := Compare(a.list[i], b.list[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.list), len(b.list))
	case KindMap:
		for i := 0; i < len(a.entries) && i < len(b.entries); i++ {
			if c := strings.Compare(a.entries[i].Key, b.entries[i].Key); c != 0 {
				return c
			}
			if c := Compare(a.entries[i].Value, b.entries[i].Value); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.entries), len(b.entries))
	}
	return 0
}

// CompareEncoded 按字节序比较两个编码。
func CompareEncoded(a, b []byte) int {
	return bytes.Compare(a, b)
}

func (v Value) collationKind() Kind {
	if v.kind == KindNumber && !v.IsFinite() {
		return KindNull
	}
	return v.kind
}
