package tokens

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC20ABI is the subset of the ERC-20 interface used by the SDK.
const ERC20ABI = `[
	{
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "decimals",
		"outputs": [{"name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const (
	MethodBalanceOf = "balanceOf"
	MethodDecimals  = "decimals"
	MethodSymbol    = "symbol"
	MethodTransfer  = "transfer"
)

var parsedERC20 = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		panic(err)
	}
	return a
}()

// ERC20 returns the parsed ERC-20 ABI.
func ERC20() abi.ABI {
	return parsedERC20
}
