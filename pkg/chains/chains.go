// Package chains is the static registry of Morph networks supported by the
// SDK: chain ID, native currency, RPC endpoints and block explorer.
package chains

import (
	"errors"
	"fmt"
	"sort"
)

// ErrChainNotFound is returned when a chain ID is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Currency describes the native currency of a chain.
type Currency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// Chain is an immutable description of a supported network.
type Chain struct {
	ID             uint64   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Network        string   `json:"network" yaml:"network"`
	NativeCurrency Currency `json:"native_currency" yaml:"native_currency"`
	// RPCURL is the default JSON-RPC endpoint, PublicRPCURL the public one.
	RPCURL       string `json:"rpc_url" yaml:"rpc_url"`
	PublicRPCURL string `json:"public_rpc_url" yaml:"public_rpc_url"`
	ExplorerName string `json:"explorer_name" yaml:"explorer_name"`
	ExplorerURL  string `json:"explorer_url" yaml:"explorer_url"`
}

// TxURL returns the explorer page of a transaction hash.
func (c Chain) TxURL(hash string) string {
	return fmt.Sprintf("%s/tx/%s", c.ExplorerURL, hash)
}

// AddressURL returns the explorer page of an account or contract.
func (c Chain) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", c.ExplorerURL, address)
}

const (
	MainnetID uint64 = 2818
	TestnetID uint64 = 2910
)

var ether = Currency{Name: "Ether", Symbol: "ETH", Decimals: 18}

// MorphMainnet is the Morph mainnet.
var MorphMainnet = Chain{
	ID:             MainnetID,
	Name:           "Morph Mainnet",
	Network:        "morph-mainnet",
	NativeCurrency: ether,
	RPCURL:         "https://rpc-quicknode.morphl2.io",
	PublicRPCURL:   "https://rpc-quicknode.morphl2.io",
	ExplorerName:   "Morph Explorer",
	ExplorerURL:    "https://explorer.morphl2.io",
}

// MorphHoodiTestnet is the Morph Hoodi test network.
var MorphHoodiTestnet = Chain{
	ID:             TestnetID,
	Name:           "Morph Hoodi Testnet",
	Network:        "morph-hoodi-testnet",
	NativeCurrency: ether,
	RPCURL:         "https://rpc-hoodi.morphl2.io",
	PublicRPCURL:   "https://rpc-hoodi.morphl2.io",
	ExplorerName:   "Morph Hoodi Explorer",
	ExplorerURL:    "https://explorer-hoodi.morphl2.io",
}

var supported = []Chain{
	MorphMainnet,
	MorphHoodiTestnet,
}

var byID = func() map[uint64]Chain {
	m := make(map[uint64]Chain, len(supported))
	for _, c := range supported {
		if _, found := m[c.ID]; found {
			panic(fmt.Errorf("chain with id %d already registered", c.ID))
		}
		m[c.ID] = c
	}
	return m
}()

// ByID returns the registered chain with the given ID.
func ByID(id uint64) (Chain, error) {
	c, found := byID[id]
	if !found {
		return Chain{}, fmt.Errorf("chain id %d: %w", id, ErrChainNotFound)
	}
	return c, nil
}

// IsSupported reports whether id is a registered chain.
func IsSupported(id uint64) bool {
	_, found := byID[id]
	return found
}

// All returns the registered chains ordered by ID.
func All() []Chain {
	res := make([]Chain, 0, len(byID))
	for _, c := range byID {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// NativeDecimals returns the native currency decimals of chain id, falling
// back to 18 for chains outside the registry.
func NativeDecimals(id uint64) int {
	if c, found := byID[id]; found {
		return c.NativeCurrency.Decimals
	}
	return ether.Decimals
}

// NativeSymbol returns the native currency symbol of chain id, falling back
// to ETH for chains outside the registry.
func NativeSymbol(id uint64) string {
	if c, found := byID[id]; found {
		return c.NativeCurrency.Symbol
	}
	return ether.Symbol
}
