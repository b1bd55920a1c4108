package collate

// 字符串中的 0x00/0x01/0x02 按下表替换，保证载荷中不出现终止符且字节序不变：
//
//	0x00 -> 0x01 0x01
//	0x01 -> 0x01 0x02
//	0x02 -> 0x02 0x02
const (
	escapeLow  byte = 0x01
	escapeHigh byte = 0x02
)

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] <= escapeHigh {
			return true
		}
	}
	return false
}

func appendEscaped(dst []byte, s string) []byte {
	if !needsEscape(s) {
		return append(dst, s...)
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case terminator:
			dst = append(dst, escapeLow, escapeLow)
		case escapeLow:
			dst = append(dst, escapeLow, escapeHigh)
		case escapeHigh:
			dst = append(dst, escapeHigh, escapeHigh)
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

func escape(s string) string {
	if !needsEscape(s) {
		return s
	}
	return string(appendEscaped(make([]byte, 0, len(s)+4), s))
}

// unescape 还原 escape 的结果。遇到不成对的转义字节时返回其下标与 false。
func unescape(b []byte) (string, int, bool) {
	i := 0
	for i < len(b) && b[i] > escapeHigh {
		i++
	}
	if i == len(b) {
		return string(b), 0, true
	}
	out := make([]byte, i, len(b))
	copy(out, b[:i])
	for ; i < len(b); i++ {
		c := b[i]
		if c > escapeHigh {
			out = append(out, c)
			continue
		}
		if i+1 >= len(b) {
			return "", i, false
		}
		switch next := b[i+1]; {
		case c == escapeLow && next == escapeLow:
			out = append(out, terminator)
		case c == escapeLow && next == escapeHigh:
			out = append(out, escapeLow)
		case c == escapeHigh && next == escapeHigh:
			out = append(out, escapeHigh)
		default:
			return "", i, false
		}
		i++
	}
	return string(out), 0, true
}
