package money

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatARS renders an amount the way es-AR displays pesos: rounded to the
// unit with dots between thousands, e.g. "$12.345".
func FormatARS(amount decimal.Decimal) string {
	return FormatInt(amount.Round(0).IntPart())
}

// FormatInt renders an already rounded amount, e.g. 3367 -> "$3.367".
func FormatInt(amount int64) string {
	if amount < 0 {
		return "-$" + Group(strconv.FormatInt(-amount, 10))
	}
	return "$" + Group(strconv.FormatInt(amount, 10))
}

// Group inserts a dot every three digits from the right.
func Group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head := n % 3
	out := make([]byte, 0, n+n/3)
	if head > 0 {
		out = append(out, digits[:head]...)
	}
	for i := head; i < n; i += 3 {
		if len(out) > 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
