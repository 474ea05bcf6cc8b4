// Package transfer validates transfer requests, estimates their fees and
// drives a transfer attempt through submission and confirmation.
package transfer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Amount rules, in the order they are checked.
var (
	ErrAmountRequired      = errors.New("amount is required")
	ErrAmountNotPositive   = errors.New("amount must be a positive number")
	ErrBalanceUnavailable  = errors.New("balance not available")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTooManyDecimals     = errors.New("too many decimal places")
)

// Address rules, in the order they are checked.
var (
	ErrAddressRequired = errors.New("recipient address is required")
	ErrAddressPrefix   = errors.New("address must start with 0x")
	ErrAddressLength   = errors.New("address must be 42 characters long")
	ErrAddressFormat   = errors.New("invalid address format")
)

var (
	ErrTokenRequired    = errors.New("token is required")
	ErrUnsupportedToken = errors.New("unsupported token")
	ErrChainUnavailable = errors.New("chain ID not available")
)

// ValidationError reports which request field failed which rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ValidateAmount checks a user entered amount against the available
// balance and the token precision. The first failing rule wins: required,
// positive, balance available, within balance, fractional digits.
func ValidateAmount(amount, balance string, decimals int) error {
	a, err := positiveAmount(amount)
	if err != nil {
		return err
	}
	if strings.TrimSpace(balance) == "" {
		return invalid("amount", ErrBalanceUnavailable)
	}
	b, err := decimal.NewFromString(strings.TrimSpace(balance))
	if err != nil {
		return invalid("amount", fmt.Errorf("%w: %q", ErrBalanceUnavailable, balance))
	}
	if a.GreaterThan(b) {
		return invalid("amount", ErrInsufficientBalance)
	}
	return checkDecimals(amount, decimals)
}

// ValidateAmountFormat applies the amount rules that do not need a
// balance.
func ValidateAmountFormat(amount string, decimals int) error {
	if _, err := positiveAmount(amount); err != nil {
		return err
	}
	return checkDecimals(amount, decimals)
}

func positiveAmount(amount string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return decimal.Zero, invalid("amount", ErrAmountRequired)
	}
	a, err := decimal.NewFromString(s)
	if err != nil || !a.IsPositive() {
		return decimal.Zero, invalid("amount", ErrAmountNotPositive)
	}
	return a, nil
}

// checkDecimals counts the fractional digits as written, so "1.50" has
// two even though it equals 1.5.
func checkDecimals(amount string, decimals int) error {
	_, frac, found := strings.Cut(strings.TrimSpace(amount), ".")
	if !found {
		return nil
	}
	if i := strings.IndexAny(frac, "eE"); i >= 0 {
		frac = frac[:i]
	}
	if len(frac) > decimals {
		return invalid("amount", fmt.Errorf("%w (max %d)", ErrTooManyDecimals, decimals))
	}
	return nil
}

// ValidateAddress checks the recipient: present, 0x prefixed, 42
// characters, hex.
func ValidateAddress(address string) error {
	switch {
	case strings.TrimSpace(address) == "":
		return invalid("address", ErrAddressRequired)
	case !strings.HasPrefix(address, "0x"):
		return invalid("address", ErrAddressPrefix)
	case len(address) != 42:
		return invalid("address", ErrAddressLength)
	case !common.IsHexAddress(address):
		return invalid("address", ErrAddressFormat)
	}
	return nil
}

// ValidationResult is the {valid, error} view of a validation error.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Check turns the error of a validator into a ValidationResult.
func Check(err error) ValidationResult {
	if err == nil {
		return ValidationResult{Valid: true}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ValidationResult{Error: ve.Err.Error()}
	}
	return ValidationResult{Error: err.Error()}
}
