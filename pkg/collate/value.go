package collate

import (
	"math"
	"strconv"
	"strings"
)

// Kind 是值的类型标签，数值本身即编码中的类型字节（'0'+Kind）。
// 类型之间的排序为 Null < Bool < Number < String < List < Map。
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindNumber:  "number",
	KindString:  "string",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// tag 返回该类型在编码中使用的 ASCII 数字。
func (k Kind) tag() byte {
	return '0' + byte(k)
}

// Entry 是 Map 中的一个键值对。
type Entry struct {
	Key   string
	Value Value
}

// Value 是可排序编码的值树，零值为无效值，Encode 时返回 UnsupportedType。
//
// Number 统一以 float64 参与编码；Int 额外保留原始 int64，用于精确还原。
// Map 保留插入顺序，键唯一性由调用方保证。
type Value struct {
	kind    Kind
	boolean bool
	isInt   bool
	i       int64
	f       float64
	str     string
	list    []Value
	entries []Entry
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i, f: float64(i)} }

// Float 构造一个浮点数值；NaN 与 ±Inf 合法，编码时按 Null 处理。
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

func String(s string) Value { return Value{kind: KindString, str: s} }

// List 构造一个有序列表，nil 与空列表等价。
func List(elems ...Value) Value { return Value{kind: KindList, list: elems} }

// Map 构造一个保留插入顺序的键值表。
func Map(entries ...Entry) Value { return Value{kind: KindMap, entries: entries} }

// Number 按 f 是否为可表示的整数选择 Int 或 Float。
func Number(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Int(int64(f))
	}
	return Float(f)
}

func (v Value) Kind() Kind { return v.kind }

// IsValid 报告该值是否由构造函数创建。
func (v Value) IsValid() bool { return v.kind >= KindNull && v.kind <= KindMap }

// IsInt 报告 Number 是否以整数形式保存。
func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

// IsFinite 对 NaN 与 ±Inf 返回 false，其余 Number 返回 true。
func (v Value) IsFinite() bool {
	return v.kind == KindNumber && !math.IsNaN(v.f) && !math.IsInf(v.f, 0)
}

func (v Value) AsBool() bool { return v.boolean }

// AsInt 返回 Number 的整数部分，Float 会被截断。
func (v Value) AsInt() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.f)
}

func (v Value) AsFloat() float64 { return v.f }

func (v Value) AsString() string { return v.str }

// Elems 返回 List 的元素，调用方不应修改返回的切片。
func (v Value) Elems() []Value { return v.list }

// Entries 返回 Map 的键值对，顺序与插入顺序一致。
func (v Value) Entries() []Entry { return v.entries }

// Len 返回 List 元素个数、Map 键值对个数或 String 字节数，其它类型返回 0。
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.entries)
	case KindString:
		return len(v.str)
	default:
		return 0
	}
}

// Get 返回 Map 中第一个键为 key 的值。
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Equal 比较两个值的结构是否相同；Int 与 Float 按数值比较。
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull, KindInvalid:
		return true
	case KindBool:
		return v.boolean == other.boolean
	case KindNumber:
		if v.isInt && other.isInt {
			return v.i == other.i
		}
		if math.IsNaN(v.f) && math.IsNaN(other.f) {
			return true
		}
		return v.f == other.f
	case KindString:
		return v.str == other.str
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for i := range v.entries {
			if v.entries[i].Key != other.entries[i].Key || !v.entries[i].Value.Equal(other.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// String 返回便于调试的文本形式，格式接近 JSON 但不保证可解析。
func (v Value) String() string {
	var sb strings.Builder
	v.writeTo(&sb)
	return sb.String()
}

func (v Value) writeTo(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if v.isInt {
			sb.WriteString(strconv.FormatInt(v.i, 10))
		} else {
			sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case KindString:
		sb.WriteString(strconv.Quote(v.str))
	case KindList:
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeTo(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(e.Key))
			sb.WriteByte(':')
			e.Value.writeTo(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("<invalid>")
	}
}
