// Package tokens holds the static token registry of the supported Morph
// chains and resolves user supplied token selectors (a symbol or a raw
// contract address) into token descriptors.
package tokens

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/c13studio/c13-sdk/pkg/chains"
)

// NativeAddress is the reserved address standing for a chain's native currency.
var NativeAddress = common.Address{}

// DefaultDecimals is assumed for tokens the registry does not know about.
const DefaultDecimals = 18

// UnknownSymbol labels tokens selected by a raw contract address.
const UnknownSymbol = "UNKNOWN"

// Token is the resolved description of a token on one chain.
type Token struct {
	Address  common.Address `json:"address" yaml:"address"`
	Symbol   string         `json:"symbol" yaml:"symbol"`
	Name     string         `json:"name" yaml:"name"`
	Decimals int            `json:"decimals" yaml:"decimals"`
	Native   bool           `json:"native" yaml:"native"`
}

// HasContract reports whether the token is backed by a contract that can
// be called, i.e. it is not native and its address is not the reserved one.
func (t Token) HasContract() bool {
	return !t.Native && t.Address != NativeAddress
}

const (
	ETH  = "ETH"
	USDT = "USDT"
	USDC = "USDC"
	BGB  = "BGB"
)

func nativeToken(chainID uint64) Token {
	c, err := chains.ByID(chainID)
	if err != nil {
		return Token{
			Address:  NativeAddress,
			Symbol:   chains.NativeSymbol(chainID),
			Name:     "Ether",
			Decimals: chains.NativeDecimals(chainID),
			Native:   true,
		}
	}
	return Token{
		Address:  NativeAddress,
		Symbol:   c.NativeCurrency.Symbol,
		Name:     c.NativeCurrency.Name,
		Decimals: c.NativeCurrency.Decimals,
		Native:   true,
	}
}

// The testnet deployment reuses a single mock contract for all ERC-20s.
var testnetMock = common.HexToAddress("0x6fbDF89ef12a197e5f1A4b6E2dDBFC98E638046c")

var registry = map[uint64]map[string]Token{
	chains.MainnetID: {
		ETH:  nativeToken(chains.MainnetID),
		USDT: {Address: common.HexToAddress("0xf417F5A458eC102B90352F697D6e2Ac3A3d2851f"), Symbol: USDT, Name: "Tether USD", Decimals: 6},
		USDC: {Address: common.HexToAddress("0xd567B3d7B8FE3C79a1AD8dA978812cfC4Fa05e75"), Symbol: USDC, Name: "USD Coin", Decimals: 6},
		BGB:  {Address: common.HexToAddress("0xA7f8A757C4f7696c015B595F51B2901AC0121B18"), Symbol: BGB, Name: "Bitget Token", Decimals: 18},
	},
	chains.TestnetID: {
		ETH:  nativeToken(chains.TestnetID),
		USDT: {Address: testnetMock, Symbol: USDT, Name: "Tether USD", Decimals: 6},
		USDC: {Address: testnetMock, Symbol: USDC, Name: "USD Coin", Decimals: 6},
		BGB:  {Address: testnetMock, Symbol: BGB, Name: "Bitget Token", Decimals: 18},
	},
}

// Lookup returns the registered token for (chainID, symbol).
func Lookup(chainID uint64, symbol string) (Token, bool) {
	t, found := registry[chainID][symbol]
	return t, found
}

// Symbols returns the registered symbols of a chain in alphabetical order.
func Symbols(chainID uint64) []string {
	res := make([]string, 0, len(registry[chainID]))
	for s := range registry[chainID] {
		res = append(res, s)
	}
	sort.Strings(res)
	return res
}

// IsAddress reports whether s is a 0x-prefixed 40 hex digit address.
func IsAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}
