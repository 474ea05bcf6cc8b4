package transfer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/format"
	"github.com/c13studio/c13-sdk/pkg/tokens"
)

// ERC20TransferGas is the flat gas limit assumed for a token transfer.
const ERC20TransferGas uint64 = 65000

// DefaultGasPrice is used when the caller has no gas price.
var DefaultGasPrice = big.NewInt(params.GWei)

// feeDisplayDecimals is the fixed precision of Fee.FormattedFee.
const feeDisplayDecimals = 6

// Fee is a flat fee estimate for one transfer.
type Fee struct {
	GasLimit     uint64   `json:"gas_limit"`
	GasPrice     *big.Int `json:"gas_price"`
	TotalFee     *big.Int `json:"total_fee"`
	FormattedFee string   `json:"formatted_fee"`
}

// EstimateGas returns the gas limit of a transfer of token: the plain
// value transfer cost for the native currency, ERC20TransferGas otherwise.
// It is an approximation; nothing is asked of the network.
func EstimateGas(token string, chainID uint64) uint64 {
	if tokens.ResolveString(token, chainID).Native {
		return params.TxGas
	}
	return ERC20TransferGas
}

// EstimateFee prices EstimateGas at gasPrice, or DefaultGasPrice when
// gasPrice is nil. The fee is rendered in the chain's native currency.
func EstimateFee(token string, chainID uint64, gasPrice *big.Int) Fee {
	if gasPrice == nil {
		gasPrice = DefaultGasPrice
	}
	limit := EstimateGas(token, chainID)
	total := new(big.Int).Mul(new(big.Int).SetUint64(limit), gasPrice)
	fee := decimal.NewFromBigInt(total, -int32(chains.NativeDecimals(chainID)))
	return Fee{
		GasLimit:     limit,
		GasPrice:     new(big.Int).Set(gasPrice),
		TotalFee:     total,
		FormattedFee: fmt.Sprintf("%s %s", fee.StringFixed(feeDisplayDecimals), chains.NativeSymbol(chainID)),
	}
}

// ParseTransferAmount converts a decimal amount into smallest units.
func ParseTransferAmount(amount string, decimals int) (*big.Int, error) {
	v, err := format.ParseUnits(amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %s: %w", amount, err)
	}
	return v, nil
}
