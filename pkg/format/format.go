// Package format turns raw balances, amounts and addresses into display
// strings, and converts between decimal strings and smallest-unit integers.
// All arithmetic is done on decimals; nothing goes through float64.
package format

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Display defaults.
const (
	DefaultBalanceDecimals    = 2
	DefaultAddressChars       = 4
	DefaultCompactDecimals    = 1
	DefaultPercentageDecimals = 2
	// MaxAmountDecimals caps the fractional digits shown for token amounts.
	MaxAmountDecimals = 8
)

// AddressPlaceholder is shown in place of a missing or malformed address.
const AddressPlaceholder = "0x0000…0000"

var (
	thousand = decimal.New(1, 3)
	million  = decimal.New(1, 6)
	billion  = decimal.New(1, 9)
)

func parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// group inserts thousands separators into the integer part of a plain
// decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatBalance renders balance with exactly decimals fractional digits and
// thousands separators, e.g. "1,234.57". Missing or unparsable balances
// render as "0.00".
func FormatBalance(balance string, decimals int) string {
	d, ok := parse(balance)
	if !ok {
		return "0.00"
	}
	if decimals < 0 {
		decimals = 0
	}
	if d.IsZero() {
		if decimals == 0 {
			return "0"
		}
		return "0." + strings.Repeat("0", decimals)
	}
	return group(d.StringFixed(int32(decimals)))
}

// FormatAddress shortens an address to "0x" plus chars leading hex digits,
// an ellipsis and chars trailing digits. chars is clamped to [1, 20].
// Empty, unprefixed or implausibly short input yields AddressPlaceholder;
// addresses too short to benefit from shortening are returned as is.
func FormatAddress(address string, chars int) string {
	if address == "" || !strings.HasPrefix(address, "0x") || len(address) < 10 {
		return AddressPlaceholder
	}
	chars = max(1, min(chars, 20))
	if len(address) <= 2+chars*2+3 {
		return address
	}
	return address[:2+chars] + "…" + address[len(address)-chars:]
}

// FormatTokenAmount is FormatBalance followed by the token symbol.
func FormatTokenAmount(amount, symbol string, decimals int) string {
	return FormatBalance(amount, decimals) + " " + symbol
}

// FormatCompactNumber abbreviates value with K, M or B suffixes, e.g.
// "1500000" at 1 decimal becomes "1.5M".
func FormatCompactNumber(value string, decimals int) string {
	d, ok := parse(value)
	if !ok || d.IsZero() {
		return "0"
	}
	if decimals < 0 {
		decimals = 0
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	abs := d.Abs()
	places := int32(decimals)

	switch {
	case abs.GreaterThanOrEqual(billion):
		return sign + abs.Div(billion).StringFixed(places) + "B"
	case abs.GreaterThanOrEqual(million):
		return sign + abs.Div(million).StringFixed(places) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return sign + abs.Div(thousand).StringFixed(places) + "K"
	default:
		return sign + abs.StringFixed(places)
	}
}

// FormatPercentage renders value (0-100 scale) with decimals fractional
// digits and a percent sign.
func FormatPercentage(value string, decimals int) string {
	d, ok := parse(value)
	if !ok {
		return "0.00%"
	}
	if decimals < 0 {
		decimals = 0
	}
	return d.StringFixed(int32(decimals)) + "%"
}

// Amount is a transfer amount prepared for display.
type Amount struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
	Decimals  int    `json:"decimals"`
}

// trimmed rounds d to at most min(decimals, MaxAmountDecimals) fractional
// digits, drops trailing zeros and groups thousands.
func trimmed(d decimal.Decimal, decimals int) string {
	places := max(0, min(decimals, MaxAmountDecimals))
	return group(d.Round(int32(places)).String())
}

// FormatTransferAmount prepares a user entered amount for display next to
// its symbol, e.g. ("1234.5", 6, "USDT") -> "1,234.5 USDT".
func FormatTransferAmount(amount string, decimals int, symbol string) Amount {
	d, _ := parse(amount)
	return Amount{
		Raw:       amount,
		Formatted: fmt.Sprintf("%s %s", trimmed(d, decimals), symbol),
		Decimals:  decimals,
	}
}

// FormatAmountFromInt renders a smallest-unit amount with its symbol.
func FormatAmountFromInt(amount *big.Int, decimals int, symbol string) string {
	if amount == nil {
		amount = new(big.Int)
	}
	d := decimal.NewFromBigInt(amount, -int32(decimals))
	return fmt.Sprintf("%s %s", trimmed(d, decimals), symbol)
}
