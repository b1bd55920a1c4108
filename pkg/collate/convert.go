package collate

import (
	"encoding"
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// maxConvertDepth 防止指针成环的 Go 值导致无限递归。
const maxConvertDepth = MaxDepth

// FromAny 将常见 Go 值转换为 Value：
//
//   - nil 与 nil 指针转换为 Null；
//   - bool、各类整数与浮点数、json.Number 转换为 Bool/Number，超过 int64 的 uint64 转换为 Float；
//   - string、[]byte 与 encoding.TextMarshaler 转换为 String；
//   - slice 与 array 转换为 List；
//   - 键为字符串、数字或布尔的 map 转换为 Map，键取字符串形式并排序；
//   - struct 按字段声明顺序转换为 Map，遵循 json 标签的改名、"-" 与 omitempty。
//
// Value 与 *Value 原样返回。其它类型返回 UnsupportedType。
func FromAny(v any) (Value, error) {
	return fromAny(v, 0)
}

func fromAny(v any, depth int) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return Null(), nil
		}
		return *t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, newUnsupportedType("json.Number(" + t.String() + ")")
		}
		return Float(f), nil
	case string:
		return String(t), nil
	case []byte:
		return String(string(t)), nil
	case encoding.TextMarshaler:
		text, err := t.MarshalText()
		if err != nil {
			return Value{}, err
		}
		return String(string(text)), nil
	}
	return fromReflect(reflect.ValueOf(v), depth)
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	if depth > maxConvertDepth {
		return Value{}, newUnsupportedType(rv.Type().String() + " (nested too deep or cyclic)")
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromField(rv.Elem(), depth+1)

	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil

	case reflect.Slice:
		if rv.IsNil() {
			return List(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(string(rv.Bytes())), nil
		}
		fallthrough
	case reflect.Array:
		elems := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e, err := fromField(rv.Index(i), depth+1)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return List(elems...), nil

	case reflect.Map:
		return fromMap(rv, depth)

	case reflect.Struct:
		entries, err := structEntries(rv, depth, nil)
		if err != nil {
			return Value{}, err
		}
		return Map(entries...), nil
	}
	return Value{}, unsupportedGoType(rv.Type())
}

// fromField 转换容器中的元素，不可导出的值走反射分支。
func fromField(rv reflect.Value, depth int) (Value, error) {
	if rv.CanInterface() {
		return fromAny(rv.Interface(), depth)
	}
	return fromReflect(rv, depth)
}

func fromMap(rv reflect.Value, depth int) (Value, error) {
	if rv.IsNil() {
		return Map(), nil
	}
	entries := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, ok := mapKeyString(iter.Key())
		if !ok {
			return Value{}, newUnsupportedType(rv.Type().String() + " (map key " + rv.Type().Key().String() + ")")
		}
		val, err := fromField(iter.Value(), depth+1)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return Map(entries...), nil
}

func mapKeyString(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64), true
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), true
	}
	return "", false
}

// structEntries 按声明顺序收集可导出字段，匿名的无标签结构体字段会被展开。
func structEntries(rv reflect.Value, depth int, entries []Entry) ([]Entry, error) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				var err error
				if entries, err = structEntries(fv, depth+1, entries); err != nil {
					return nil, err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		val, err := fromField(fv, depth+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: name, Value: val})
	}
	return entries, nil
}

// Interface 将 Value 转换为普通 Go 值：nil、bool、int64、float64、string、[]any 或 map[string]any。
// Map 中重复的键以最后一次出现为准。
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if v.isInt {
			return v.i
		}
		return v.f
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}
