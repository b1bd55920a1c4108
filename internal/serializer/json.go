package serializer

import (
	"math"
	"strconv"

	"github.com/bytedance/sonic/ast"

	"github.com/lk2023060901/collate-go/internal/json"
	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// JSONSerializer 使用 internal/json（基于 bytedance/sonic）实现 JSON 编解码。
//
// collate.Value 按 Map 的插入顺序输出对象键，解码到 *collate.Value 时保留原文中的键顺序；
// 其它类型直接交给 sonic 处理。
type JSONSerializer struct{}

// 编译期断言：确保 JSONSerializer 实现了 Serializer 接口。
var _ Serializer = (*JSONSerializer)(nil)

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch t := v.(type) {
	case collate.Value:
		data, err = AppendJSON(nil, t)
	case *collate.Value:
		if t == nil {
			data = []byte("null")
		} else {
			data, err = AppendJSON(nil, *t)
		}
	default:
		data, err = json.Marshal(v)
	}
	observe(FormatJSON, metrics.MarshalOp, err)
	return data, err
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	var err error
	if t, ok := v.(*collate.Value); ok && t != nil {
		var val collate.Value
		val, err = ParseJSON(data)
		if err == nil {
			*t = val
		}
	} else {
		err = json.Unmarshal(data, v)
	}
	observe(FormatJSON, metrics.UnmarshalOp, err)
	return err
}

// AppendJSON 将 v 以 JSON 形式追加到 dst，对象键按插入顺序输出。NaN 与 ±Inf 输出为 null。
func AppendJSON(dst []byte, v collate.Value) ([]byte, error) {
	node, err := toNode(v, 0)
	if err != nil {
		return dst, err
	}
	data, err := node.MarshalJSON()
	if err != nil {
		return dst, err
	}
	return append(dst, data...), nil
}

// toNode 将 v 转换为 sonic 语法树，Map 的条目顺序原样保留。
func toNode(v collate.Value, depth int) (ast.Node, error) {
	if depth > collate.MaxDepth {
		return ast.Node{}, merr.WrapErrParameterTooLarge("depth", "value nested too deep for json")
	}
	switch v.Kind() {
	case collate.KindNull:
		return ast.NewNull(), nil
	case collate.KindBool:
		return ast.NewBool(v.AsBool()), nil
	case collate.KindNumber:
		return numberNode(v)
	case collate.KindString:
		return ast.NewString(v.AsString()), nil
	case collate.KindList:
		elems := make([]ast.Node, 0, v.Len())
		for _, e := range v.Elems() {
			node, err := toNode(e, depth+1)
			if err != nil {
				return ast.Node{}, err
			}
			elems = append(elems, node)
		}
		return ast.NewArray(elems), nil
	case collate.KindMap:
		pairs := make([]ast.Pair, 0, v.Len())
		for _, e := range v.Entries() {
			node, err := toNode(e.Value, depth+1)
			if err != nil {
				return ast.Node{}, err
			}
			pairs = append(pairs, ast.NewPair(e.Key, node))
		}
		return ast.NewObject(pairs), nil
	default:
		return ast.Node{}, merr.WrapErrUnsupportedType("collate.Value(kind=" + v.Kind().String() + ")")
	}
}

func numberNode(v collate.Value) (ast.Node, error) {
	var num any = v.AsFloat()
	if v.IsInt() {
		num = v.AsInt()
	} else if f := v.AsFloat(); math.IsNaN(f) || math.IsInf(f, 0) {
		return ast.NewNull(), nil
	}
	data, err := json.Marshal(num)
	if err != nil {
		return ast.Node{}, err
	}
	return ast.NewNumber(string(data)), nil
}

// ParseJSON 将 JSON 文本解析为 collate.Value，对象键保持原文顺序。
func ParseJSON(data []byte) (collate.Value, error) {
	root, err := json.Parse(data)
	if err != nil {
		return collate.Value{}, invalidJSON(err)
	}
	return fromNode(&root, 0)
}

func invalidJSON(err error) error {
	return merr.WrapErrParameterInvalidMsg("invalid json: %s", err.Error())
}

func fromNode(node *ast.Node, depth int) (collate.Value, error) {
	if depth > collate.MaxDepth {
		return collate.Value{}, merr.WrapErrParameterTooLarge("depth", "json nested too deep")
	}
	switch node.TypeSafe() {
	case ast.V_NULL:
		return collate.Null(), nil
	case ast.V_TRUE:
		return collate.Bool(true), nil
	case ast.V_FALSE:
		return collate.Bool(false), nil
	case ast.V_NUMBER:
		num, err := node.Number()
		if err != nil {
			return collate.Value{}, invalidJSON(err)
		}
		return parseJSONNumber(num)
	case ast.V_STRING:
		s, err := node.String()
		if err != nil {
			return collate.Value{}, invalidJSON(err)
		}
		return collate.String(s), nil
	case ast.V_ARRAY:
		it, err := node.Values()
		if err != nil {
			return collate.Value{}, invalidJSON(err)
		}
		var (
			elems []collate.Value
			elem  ast.Node
		)
		for it.Next(&elem) {
			val, err := fromNode(&elem, depth+1)
			if err != nil {
				return collate.Value{}, err
			}
			elems = append(elems, val)
		}
		return collate.List(elems...), nil
	case ast.V_OBJECT:
		it, err := node.Properties()
		if err != nil {
			return collate.Value{}, invalidJSON(err)
		}
		var (
			entries []collate.Entry
			pair    ast.Pair
		)
		for it.Next(&pair) {
			val, err := fromNode(&pair.Value, depth+1)
			if err != nil {
				return collate.Value{}, err
			}
			entries = append(entries, collate.Entry{Key: pair.Key, Value: val})
		}
		return collate.Map(entries...), nil
	default:
		return collate.Value{}, merr.WrapErrParameterInvalidMsg("invalid json node type %d", node.TypeSafe())
	}
}

// parseJSONNumber 优先按 int64 解析，超出范围或带小数时按 float64 解析。
func parseJSONNumber(num json.Number) (collate.Value, error) {
	if i, err := strconv.ParseInt(string(num), 10, 64); err == nil {
		return collate.Int(i), nil
	}
	f, err := strconv.ParseFloat(string(num), 64)
	if err != nil {
		return collate.Value{}, merr.WrapErrParameterInvalidMsg("json number %s out of range", string(num))
	}
	return collate.Number(f), nil
}
