package finance

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// maxFiniteBits is the widest integer that still fits a float64.
const maxFiniteBits = 1024

// ParseNumber converts user-typed text into a number.
//
// Whitespace is stripped and the first comma is read as the decimal
// separator, so "1,5" and "1.5" are equal. Thousands separators are not
// supported ("1.234,56" is rejected). Unsigned 0x, 0o and 0b prefixes read
// as hexadecimal, octal and binary integers. Anything a float64 cannot
// hold (NaN, Infinity, "1e400") reads as zero, as does empty or malformed
// text; this function never fails.
func ParseNumber(text string) decimal.Decimal {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if clean == "" {
		return decimal.Zero
	}
	clean = strings.Replace(clean, ",", ".", 1)

	if base, digits, ok := radixPrefix(clean); ok {
		if strings.ContainsAny(digits, "+-") {
			return decimal.Zero
		}
		n, ok := new(big.Int).SetString(digits, base)
		if !ok || n.BitLen() > maxFiniteBits {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(n, 0)
	}

	// Range check first: decimal accepts any exponent, and a huge one makes
	// later rounding build the full integer.
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f == 0 {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		// Forms like ".5" or "+5" that ParseFloat reads and decimal does not.
		return decimal.NewFromFloat(f)
	}
	return d
}

func radixPrefix(s string) (base int, digits string, ok bool) {
	if len(s) < 3 || s[0] != '0' {
		return 0, "", false
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}
