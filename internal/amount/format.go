package amount

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// dustLabel stands in for positive amounts too small to show with four fraction digits.
const dustLabel = "<0.0001"

var (
	smallest = decimal.New(1, -4)
	one      = decimal.NewFromInt(1)
	thousand = decimal.New(1, 3)
	million  = decimal.New(1, 6)
	billion  = decimal.New(1, 9)
	trillion = decimal.New(1, 12)
)

// ToDecimal scales an integer amount by 10^-decimals without going through floating point.
func ToDecimal(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// Compact renders an amount for tight UI slots: 1.5K, 2M, 12.50, 0.0042.
func Compact(x decimal.Decimal) string {
	if x.IsZero() {
		return "0"
	}
	if x.IsNegative() {
		return "-" + Compact(x.Neg())
	}

	switch {
	case x.GreaterThanOrEqual(trillion):
		return withSuffix(x, trillion, "T")
	case x.GreaterThanOrEqual(billion):
		return withSuffix(x, billion, "B")
	case x.GreaterThanOrEqual(million):
		return withSuffix(x, million, "M")
	case x.GreaterThanOrEqual(thousand):
		return withSuffix(x, thousand, "K")
	case x.LessThan(smallest):
		return dustLabel
	case x.LessThan(one):
		return trimFraction(x.Truncate(4).StringFixed(4))
	default:
		return x.Truncate(2).StringFixed(2)
	}
}

// Full renders an amount without abbreviation: 1,234,567.5 or 0.0042.
func Full(x decimal.Decimal) string {
	if x.IsZero() {
		return "0"
	}
	if x.IsNegative() {
		return "-" + Full(x.Neg())
	}
	if x.LessThan(smallest) {
		return dustLabel
	}
	if x.LessThan(one) {
		return x.Truncate(4).StringFixed(4)
	}

	fixed := x.Truncate(2).StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return groupThousands(intPart)
	}
	return groupThousands(intPart) + "." + frac
}

func withSuffix(x, unit decimal.Decimal, suffix string) string {
	scaled := x.DivRound(unit, 8).Truncate(1).StringFixed(1)
	return strings.TrimSuffix(scaled, ".0") + suffix
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
