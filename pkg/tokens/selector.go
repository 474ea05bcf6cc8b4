package tokens

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SelectorKind tells how a selector identifies its token.
type SelectorKind int

const (
	SymbolSelector SelectorKind = iota
	AddressSelector
)

// Selector is a parsed token identifier: either a symbol or a contract address.
type Selector struct {
	kind  SelectorKind
	value string
}

// ParseSelector classifies s once. Anything that is syntactically an
// address becomes an address selector, everything else is a symbol. A
// blank s is the empty symbol, which names the native currency.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if IsAddress(s) {
		return Selector{kind: AddressSelector, value: s}
	}
	return Selector{kind: SymbolSelector, value: s}
}

// Symbol builds a symbol selector.
func Symbol(s string) Selector { return Selector{kind: SymbolSelector, value: s} }

// Address builds an address selector.
func Address(a common.Address) Selector { return Selector{kind: AddressSelector, value: a.Hex()} }

func (s Selector) Kind() SelectorKind { return s.kind }
func (s Selector) String() string    { return s.value }
func (s Selector) IsZero() bool      { return s.value == "" }

// IsNative reports whether the selector names the native currency of
// chainID: by its symbol, by the reserved address, or by being empty.
func (s Selector) IsNative(chainID uint64) bool {
	switch s.kind {
	case AddressSelector:
		return common.HexToAddress(s.value) == NativeAddress
	default:
		return s.value == "" || s.value == nativeToken(chainID).Symbol
	}
}

// Resolve turns a selector into a token descriptor. It never fails:
//
//   - the native symbol, the empty symbol or the reserved address resolve
//     to the native token;
//   - any other address resolves to an UNKNOWN token with 18 decimals,
//     without consulting the registry, even when the address belongs to a
//     registered token;
//   - a registered symbol resolves to its registry entry;
//   - an unregistered symbol resolves to a synthetic 18 decimal token named
//     after the symbol, with no contract address.
//
// The address rule is kept for compatibility with existing callers, who
// rely on custom addresses always being treated as opaque contracts.
func Resolve(sel Selector, chainID uint64) Token {
	if sel.IsNative(chainID) {
		return nativeToken(chainID)
	}
	if sel.kind == AddressSelector {
		return Token{
			Address:  common.HexToAddress(sel.value),
			Symbol:   UnknownSymbol,
			Name:     "Unknown Token",
			Decimals: DefaultDecimals,
		}
	}
	if t, found := Lookup(chainID, sel.value); found {
		return t
	}
	return Token{
		Address:  NativeAddress,
		Symbol:   sel.value,
		Name:     sel.value,
		Decimals: DefaultDecimals,
	}
}

// ResolveString parses and resolves s in one step.
func ResolveString(s string, chainID uint64) Token {
	return Resolve(ParseSelector(s), chainID)
}

// IsRegistered reports whether the selector resolves to a token the SDK
// knows: the native currency, a registered symbol or a custom address.
func IsRegistered(sel Selector, chainID uint64) bool {
	if sel.IsNative(chainID) || sel.kind == AddressSelector {
		return true
	}
	_, found := Lookup(chainID, sel.value)
	return found
}
