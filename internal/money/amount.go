// Package money models currency amounts as integer minor units (paise for INR).
package money

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a value in minor currency units.
type Amount int64

const minorPerMajor = 100

const Symbol = "₹"

var ErrInvalidAmount = errors.New("invalid amount")

// FromMajor converts whole rupees to an Amount.
func FromMajor(major int64) Amount {
	return Amount(major * minorPerMajor)
}

// Major returns the amount in major units as a decimal.
func (a Amount) Major() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Mul multiplies by an integer quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// Discount applies a percentage reduction, rounding half up to the minor unit.
func (a Amount) Discount(percent int) Amount {
	if percent <= 0 {
		return a
	}
	if percent >= 100 {
		return 0
	}
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return Amount(decimal.NewFromInt(int64(a)).Mul(factor).Round(0).IntPart())
}

// ParseDisplay reads a display string such as "₹1,299" or "Rs. 1,299.50".
// Everything other than digits and the first decimal point is dropped.
func ParseDisplay(s string) (Amount, error) {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot && b.Len() > 0:
			seenDot = true
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSuffix(b.String(), ".")
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return Amount(d.Shift(2).Round(0).IntPart()), nil
}

// String formats with the currency symbol and Indian digit grouping. Paise are
// shown only when non-zero.
func (a Amount) String() string {
	neg := a < 0
	if neg {
		a = -a
	}
	major := int64(a) / minorPerMajor
	minor := int64(a) % minorPerMajor

	out := Symbol + groupIndian(strconv.FormatInt(major, 10))
	if minor != 0 {
		out += "." + leftPad2(minor)
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupIndian groups the last three digits, then pairs: 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
