package transfer

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/format"
)

func TestValidateAmount(t *testing.T) {
	testCases := []struct {
		name     string
		amount   string
		balance  string
		decimals int
		want     error
	}{
		{"empty", "", "10", 18, ErrAmountRequired},
		{"blank", "   ", "10", 18, ErrAmountRequired},
		{"not a number", "abc", "10", 18, ErrAmountNotPositive},
		{"zero", "0", "10", 18, ErrAmountNotPositive},
		{"negative", "-1", "10", 18, ErrAmountNotPositive},
		{"no balance", "1", "", 18, ErrBalanceUnavailable},
		{"over balance", "10.5", "10", 18, ErrInsufficientBalance},
		{"too many decimals", "1.1234567", "10", 6, ErrTooManyDecimals},
		{"trailing zeros count", "1.10", "10", 1, ErrTooManyDecimals},
		{"exact balance", "10", "10", 18, nil},
		{"fewer digits than precision", "1.5", "10", 6, nil},
		{"exact precision", "0.000001", "1", 6, nil},
		{"integer token", "3", "5", 0, nil},
		{"balance beats decimals", "11.1234567", "10", 6, ErrInsufficientBalance},
		{"huge amounts compare exactly", "100000000000000000000.000000000000000001", "100000000000000000000", 18, ErrInsufficientBalance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(tc.amount, tc.balance, tc.decimals)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateAmount(%q, %q, %d) = %v, want %v", tc.amount, tc.balance, tc.decimals, err, tc.want)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != "amount" {
					t.Fatalf("expected amount ValidationError, got %#v", err)
				}
			}
		})
	}
}

func TestValidateAmount_MaxInMessage(t *testing.T) {
	err := ValidateAmount("1.1234567", "10", 6)
	if r := Check(err); r.Valid || r.Error != "too many decimal places (max 6)" {
		t.Fatalf("unexpected result %+v", r)
	}
}

// Every amount with no more fractional digits than the precision and not
// above the balance is valid.
func TestValidateAmount_AcceptsRepresentable(t *testing.T) {
	const decimals = 6
	balance := "1000000"
	for _, raw := range []int64{1, 7, 999999, 1000000, 123456789, 1000000000000} {
		amount := format.FormatUnits(big.NewInt(raw), decimals)
		if err := ValidateAmount(amount, balance, decimals); err != nil {
			t.Fatalf("ValidateAmount(%q) = %v", amount, err)
		}
	}
}

func TestValidateAddress(t *testing.T) {
	valid := "0x" + strings.Repeat("aB", 20)
	testCases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrAddressRequired},
		{"blank", "  ", ErrAddressRequired},
		{"no prefix", strings.Repeat("a", 42), ErrAddressPrefix},
		{"upper prefix", "0X" + strings.Repeat("a", 40), ErrAddressPrefix},
		{"short", "0x1234", ErrAddressLength},
		{"long", valid + "00", ErrAddressLength},
		{"not hex", "0x" + strings.Repeat("g", 40), ErrAddressFormat},
		{"valid", valid, nil},
		{"valid lower", "0x" + strings.Repeat("a", 40), nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateAddress(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("ValidateAddress(%q) = %v, want %v", tc.in, err, tc.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	if r := Check(nil); !r.Valid || r.Error != "" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r := Check(ValidateAddress("")); r.Valid || r.Error != ErrAddressRequired.Error() {
		t.Fatalf("unexpected result %+v", r)
	}
	if r := Check(errors.New("other")); r.Valid || r.Error != "other" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestEstimateFee(t *testing.T) {
	testCases := []struct {
		token    string
		chainID  uint64
		gasPrice *big.Int
		limit    uint64
		total    int64
		display  string
	}{
		{"ETH", chains.MainnetID, nil, 21000, 21000e9, "0.000021 ETH"},
		{"", chains.MainnetID, nil, 21000, 21000e9, "0.000021 ETH"},
		{"0x0000000000000000000000000000000000000000", chains.TestnetID, nil, 21000, 21000e9, "0.000021 ETH"},
		{"USDT", chains.MainnetID, nil, 65000, 65000e9, "0.000065 ETH"},
		{"USDC", chains.MainnetID, big.NewInt(2e9), 65000, 130000e9, "0.000130 ETH"},
		{"0x1111111111111111111111111111111111111111", chains.MainnetID, nil, 65000, 65000e9, "0.000065 ETH"},
	}
	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			fee := EstimateFee(tc.token, tc.chainID, tc.gasPrice)
			if fee.GasLimit != tc.limit {
				t.Fatalf("gas limit %d, want %d", fee.GasLimit, tc.limit)
			}
			if fee.TotalFee.Cmp(big.NewInt(tc.total)) != 0 {
				t.Fatalf("total fee %s, want %d", fee.TotalFee, tc.total)
			}
			if fee.FormattedFee != tc.display {
				t.Fatalf("formatted fee %q, want %q", fee.FormattedFee, tc.display)
			}
		})
	}
}

func TestEstimateFee_DoesNotAliasDefault(t *testing.T) {
	fee := EstimateFee("ETH", chains.MainnetID, nil)
	fee.GasPrice.SetInt64(1)
	if DefaultGasPrice.Int64() != 1e9 {
		t.Fatal("default gas price modified through Fee")
	}
}

func TestParseTransferAmount(t *testing.T) {
	v, err := ParseTransferAmount("1.5", 6)
	if err != nil || v.Int64() != 1_500_000 {
		t.Fatalf("ParseTransferAmount = %v, %v", v, err)
	}
	if _, err := ParseTransferAmount("1.5x", 6); err == nil || !strings.HasPrefix(err.Error(), "invalid amount format: 1.5x") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := ParseTransferAmount("0.0000001", 6); !errors.Is(err, format.ErrPrecision) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateRequest(t *testing.T) {
	to := "0x2222222222222222222222222222222222222222"
	tests := []struct {
		name    string
		req     Request
		chainID uint64
		wantErr error
		value   string
	}{
		{name: "native", req: Request{To: to, Amount: "0.5", Token: "ETH"}, chainID: chains.MainnetID, value: "500000000000000000"},
		{name: "usdt", req: Request{To: to, Amount: "2.25", Token: "USDT"}, chainID: chains.TestnetID, value: "2250000"},
		{name: "address first", req: Request{To: "", Amount: "", Token: ""}, chainID: 0, wantErr: ErrAddressRequired},
		{name: "amount before token", req: Request{To: to, Amount: "-1", Token: ""}, chainID: chains.MainnetID, wantErr: ErrAmountNotPositive},
		{name: "token before chain", req: Request{To: to, Amount: "1", Token: " "}, chainID: 0, wantErr: ErrTokenRequired},
		{name: "no chain", req: Request{To: to, Amount: "1", Token: "ETH"}, chainID: 0, wantErr: ErrChainUnavailable},
		{name: "unsupported", req: Request{To: to, Amount: "1", Token: "DOGE"}, chainID: chains.MainnetID, wantErr: ErrUnsupportedToken},
		{name: "precision", req: Request{To: to, Amount: "1.1234567", Token: "USDC"}, chainID: chains.MainnetID, wantErr: ErrTooManyDecimals},
		{name: "over balance", req: Request{To: to, Amount: "3", Token: "USDC", Balance: "2"}, chainID: chains.MainnetID, wantErr: ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, value, err := ValidateRequest(tt.req, tt.chainID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if value.String() != tt.value {
				t.Fatalf("expected value %s, got %s", tt.value, value)
			}
		})
	}
}
