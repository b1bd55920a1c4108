package collate

import (
	"bytes"
	"math"
	"strconv"
)

const (
	// MinMagnitude 为 float64 可表示的最小十进制指数。
	MinMagnitude = -324
	// MagnitudeDigits 为指数字段的定宽位数。
	MagnitudeDigits = 3
	// mantissaDigits 为尾数保留的小数位数。
	mantissaDigits = 20
)

const (
	signNegative byte = '0'
	signZero     byte = '1'
	signPositive byte = '2'
)

// NumberToSortable 将有限数转换为可按字节序比较的十进制串：
// 符号位（'0' 负、'1' 零、'2' 正）+ 3 位指数 + 尾数。
// 零编码为 "1"；NaN 与 ±Inf 没有定义，返回空串。
func NumberToSortable(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	return string(appendSortable(nil, n))
}

func appendSortable(dst []byte, n float64) []byte {
	if n == 0 {
		return append(dst, signZero)
	}
	neg := n < 0

	var scratch [32]byte
	sci := strconv.AppendFloat(scratch[:0], math.Abs(n), 'e', mantissaDigits, 64)
	idx := bytes.IndexByte(sci, 'e')
	exp, _ := strconv.Atoi(string(sci[idx+1:]))
	factor, _ := strconv.ParseFloat(string(sci[:idx]), 64)
	// 21 位有效数字回读后可能进位到 10，此时归一化到 [1,10)。
	if factor >= 10 {
		factor /= 10
		exp++
	}

	mag := exp
	if neg {
		mag = -exp
		dst = append(dst, signNegative)
	} else {
		dst = append(dst, signPositive)
	}
	mag -= MinMagnitude
	dst = append(dst, byte('0'+mag/100), byte('0'+mag/10%10), byte('0'+mag%10))

	if neg {
		factor = 10 - factor
	}
	m := strconv.AppendFloat(scratch[:0], factor, 'f', mantissaDigits, 64)
	m = bytes.TrimRight(m, "0")
	m = bytes.TrimRight(m, ".")
	return append(dst, m...)
}

// ParseNumber 从 data[*cursor] 开始解析 NumberToSortable 的输出，
// 游标停在终止符上（不消费终止符）。没有小数部分且落在 int64 范围内的结果为 Int，否则为 Float。
func ParseNumber(data []byte, cursor *int) (Value, error) {
	start := *cursor
	if start < 0 || start >= len(data) {
		return Value{}, newMalformed(data, start, "truncated number")
	}

	sign := data[start]
	switch sign {
	case signZero:
		*cursor = start + 1
		return Int(0), nil
	case signNegative, signPositive:
	default:
		return Value{}, newMalformedf(data, start, "bad number sign %q", sign)
	}

	pos := start + 1
	if pos+MagnitudeDigits > len(data) {
		return Value{}, newMalformed(data, pos, "truncated number magnitude")
	}
	mag := 0
	for _, c := range data[pos : pos+MagnitudeDigits] {
		if c < '0' || c > '9' {
			return Value{}, newMalformed(data, pos, "bad number magnitude")
		}
		mag = mag*10 + int(c-'0')
	}
	pos += MagnitudeDigits

	end := bytes.IndexByte(data[pos:], terminator)
	if end < 0 {
		return Value{}, newMalformed(data, pos, "unterminated number")
	}
	end += pos
	mantissa := data[pos:end]
	if !validMantissa(mantissa) {
		return Value{}, newMalformed(data, pos, "bad number mantissa")
	}

	neg := sign == signNegative
	exp := mag + MinMagnitude
	if neg {
		exp = -exp
	}
	f, ok := recoverNumber(neg, exp, string(mantissa), data[start:end])
	if !ok {
		return Value{}, newMalformed(data, pos, "number out of range")
	}
	*cursor = end
	return Number(f), nil
}

// validMantissa 只接受规范尾数：一位整数，可选的小数点后至少一位且不以 0 结尾。
func validMantissa(m []byte) bool {
	if len(m) == 0 || !isDigit(m[0]) {
		return false
	}
	if len(m) == 1 {
		return true
	}
	frac := m[1:]
	if frac[0] != '.' || len(frac) < 2 || frac[len(frac)-1] == '0' {
		return false
	}
	for _, c := range frac[1:] {
		if !isDigit(c) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// recoverNumber 根据尾数与指数还原数值。
//
// 编码时尾数经过 21 位有效数字截断（负数还有 10-F 的舍入），直接相乘会偏离原值一个 ulp。
// 这里从短到长尝试尾数的十进制表示，取第一个重新编码后与原始字节一致的候选；
// 都不一致时（非本实现产生的编码）退回直接计算。
func recoverNumber(neg bool, exp int, mantissa string, encoded []byte) (float64, bool) {
	factor, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		factor = 10 - factor
	}
	if factor <= 0 {
		return 0, false
	}

	var buf, enc [40]byte
	for prec := 0; prec < 17; prec++ {
		digits := strconv.AppendFloat(buf[:0], factor, 'e', prec, 64)
		candidate, ok := scaleDecimal(neg, digits, exp)
		if !ok {
			continue
		}
		if bytes.Equal(appendSortable(enc[:0], candidate), encoded) {
			return candidate, true
		}
	}

	digits := strconv.AppendFloat(buf[:0], factor, 'e', -1, 64)
	return scaleDecimal(neg, digits, exp)
}

// scaleDecimal 将形如 "d.ddde±XX" 的十进制串再乘以 10^exp 后解析为 float64。
func scaleDecimal(neg bool, digits []byte, exp int) (float64, bool) {
	idx := bytes.IndexByte(digits, 'e')
	shift, err := strconv.Atoi(string(digits[idx+1:]))
	if err != nil {
		return 0, false
	}
	s := make([]byte, 0, len(digits)+8)
	if neg {
		s = append(s, '-')
	}
	s = append(s, digits[:idx]...)
	s = append(s, 'e')
	s = strconv.AppendInt(s, int64(exp+shift), 10)
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil || math.IsInf(f, 0) || f == 0 {
		return 0, false
	}
	return f, true
}
