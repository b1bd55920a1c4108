package collate

import (
	"bytes"
)

// MaxDepth 限制解码时 List/Map 的嵌套层数，超过时返回 MalformedEncoding。
const MaxDepth = 512

// Decode 解码一个完整的编码串，等价于从偏移 0 开始调用 DecodeAt。
func Decode(data []byte) (Value, error) {
	cursor := 0
	return DecodeAt(data, &cursor)
}

// DecodeAt 从 data[*cursor] 开始解码顶层值序列，直到输入结束或遇到一个裸终止符（会被消费）。
// 序列只有一个值时直接返回该值，否则以 List 返回全部值（包括空序列）。
// 这一拆包规则只作用于顶层，嵌套的 List/Map 始终保留完整序列。
func DecodeAt(data []byte, cursor *int) (Value, error) {
	if *cursor < 0 || *cursor > len(data) {
		return Value{}, newMalformed(data, *cursor, "cursor out of range")
	}
	if bytes.IndexByte(data[*cursor:], terminator) < 0 {
		return Value{}, newMalformed(data, *cursor, "no terminator found")
	}

	var stack []Value
	for *cursor < len(data) {
		if data[*cursor] == terminator {
			*cursor++
			break
		}
		v, err := decodeValue(data, cursor, 0)
		if err != nil {
			return Value{}, err
		}
		stack = append(stack, v)
	}
	if len(stack) == 1 {
		return stack[0], nil
	}
	return List(stack...), nil
}

// Unmarshal 解码 data 并以 Value.Interface 的形式返回。
func Unmarshal(data []byte) (any, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// decodeValue 解码游标处的一个带标签值，并消费它自己的终止符。
func decodeValue(data []byte, cursor *int, depth int) (Value, error) {
	start := *cursor
	tag := data[start]
	*cursor = start + 1

	switch Kind(tag - '0') {
	case KindNull:
		if err := expectTerminator(data, cursor); err != nil {
			return Value{}, err
		}
		return Null(), nil

	case KindBool:
		if *cursor >= len(data) || data[*cursor] == terminator {
			return Value{}, newMalformed(data, *cursor, "missing boolean payload")
		}
		b := data[*cursor] == '1'
		*cursor++
		if err := expectTerminator(data, cursor); err != nil {
			return Value{}, err
		}
		return Bool(b), nil

	case KindNumber:
		n, err := ParseNumber(data, cursor)
		if err != nil {
			return Value{}, err
		}
		if err := expectTerminator(data, cursor); err != nil {
			return Value{}, err
		}
		return n, nil

	case KindString:
		s, err := decodeString(data, cursor)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil

	case KindList:
		elems, err := decodeSequence(data, cursor, start, depth+1)
		if err != nil {
			return Value{}, err
		}
		return List(elems...), nil

	case KindMap:
		elems, err := decodeSequence(data, cursor, start, depth+1)
		if err != nil {
			return Value{}, err
		}
		if len(elems)%2 != 0 {
			return Value{}, newMalformed(data, start, "map has a key without value")
		}
		entries := make([]Entry, 0, len(elems)/2)
		for i := 0; i < len(elems); i += 2 {
			if elems[i].kind != KindString {
				return Value{}, newMalformedf(data, start, "map key #%d is %s, not string", i/2, elems[i].kind)
			}
			entries = append(entries, Entry{Key: elems[i].str, Value: elems[i+1]})
		}
		return Map(entries...), nil

	default:
		*cursor = start
		return Value{}, newMalformedf(data, start, "unknown type tag %q", tag)
	}
}

// decodeSequence 连续解码元素，直到遇到裸终止符并消费它。
func decodeSequence(data []byte, cursor *int, start, depth int) ([]Value, error) {
	if depth > MaxDepth {
		return nil, newMalformed(data, start, "nesting too deep")
	}
	var elems []Value
	for {
		if *cursor >= len(data) {
			return nil, newMalformed(data, *cursor, "unterminated "+Kind(data[start]-'0').String())
		}
		if data[*cursor] == terminator {
			*cursor++
			return elems, nil
		}
		v, err := decodeValue(data, cursor, depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

func decodeString(data []byte, cursor *int) (string, error) {
	pos := *cursor
	end := bytes.IndexByte(data[pos:], terminator)
	if end < 0 {
		return "", newMalformed(data, pos, "unterminated string")
	}
	end += pos
	s, bad, ok := unescape(data[pos:end])
	if !ok {
		return "", newMalformed(data, pos+bad, "invalid escape sequence")
	}
	*cursor = end + 1
	return s, nil
}

func expectTerminator(data []byte, cursor *int) error {
	if *cursor >= len(data) {
		return newMalformed(data, *cursor, "truncated value")
	}
	if data[*cursor] != terminator {
		return newMalformedf(data, *cursor, "expected terminator, found %q", data[*cursor])
	}
	*cursor++
	return nil
}
