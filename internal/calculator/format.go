package calculator

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders f the way the keypad display shows numbers: the
// shortest decimal string that round-trips to f, plain notation for decimal
// exponents in (-6, 21], scientific notation ("1e+21", "1.5e-7") outside it,
// and "NaN", "Infinity", "-Infinity" for the special values. Negative zero
// renders as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// 'e' with precision -1 yields "d.ddde±xx" holding the shortest digits.
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	x, _ := strconv.Atoi(exp)

	k := len(digits)
	n := x + 1 // value = 0.digits × 10^n

	var b strings.Builder
	b.WriteString(sign)

	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if x >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(x))
	}

	return b.String()
}

// ParseNumber reads the longest numeric prefix of s, ignoring leading
// whitespace. A display such as "1.2.3" parses as 1.2 and "5." as 5.
// Input without any numeric prefix yields NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	intDigits := countDigits(s[i:])
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = countDigits(s[i+1:])
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return math.NaN()
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := countDigits(s[j:]); n > 0 {
			i = j + n
		}
	}

	// Only range errors are possible here, and ParseFloat already returns
	// ±Inf for those.
	f, _ := strconv.ParseFloat(s[:i], 64)
	return f
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
