package format

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrPrecision is returned when a decimal string has more fractional
// digits than the target unit can hold.
var ErrPrecision = errors.New("amount has more fractional digits than the token supports")

// ParseUnits converts a decimal string into an integer amount of the
// smallest unit at the given precision, e.g. ParseUnits("1.5", 6) = 1500000.
// The conversion is exact; inputs that would need rounding are rejected.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", amount, err)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%q at %d decimals: %w", amount, decimals, ErrPrecision)
	}
	return shifted.BigInt(), nil
}

// FormatUnits renders an integer amount of the smallest unit as a decimal
// string without trailing zeros, e.g. FormatUnits(1500000, 6) = "1.5".
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// FormatEther renders a wei amount in ether.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18)
}
