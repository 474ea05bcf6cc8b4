// Package errclass maps arbitrary errors coming from wallets, nodes and
// contracts onto a closed set of categories with fixed user facing
// messages, so that hosts never have to show raw provider errors.
package errclass

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the closed set of error classes.
type Category int

const (
	Unknown Category = iota
	UserRejected
	InsufficientFunds
	NetworkError
	UnsupportedToken
	InvalidInput
)

var categoryNames = map[Category]string{
	Unknown:           "UNKNOWN",
	UserRejected:      "USER_REJECTED",
	InsufficientFunds: "INSUFFICIENT_FUNDS",
	NetworkError:      "NETWORK_ERROR",
	UnsupportedToken:  "UNSUPPORTED_TOKEN",
	InvalidInput:      "INVALID_INPUT",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// MarshalText renders the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Display messages.
const (
	MsgUserRejected      = "Transaction cancelled by user"
	MsgInsufficientFunds = "Insufficient balance for transaction"
	MsgNetwork           = "Network connection error. Please check your internet connection"
	MsgGas               = "Transaction requires more gas. Please try again with higher gas limit"
	MsgInvalidInput      = "Invalid transaction details. Please check your input"
	MsgUnsupportedToken  = "Token not supported or contract error"
	MsgWallet            = "Wallet connection error. Please connect your wallet"
	MsgEmpty             = "Unknown error occurred"
)

// rule is one phrase group. Rules are checked in order; the first rule
// with a phrase contained in the lower-cased message wins.
type rule struct {
	category Category
	message  string
	phrases  []string
}

var rules = []rule{
	{UserRejected, MsgUserRejected, []string{
		"user rejected", "user denied", "user cancelled", "user canceled",
		"cancelled by user", "canceled by user", "rejected by user",
	}},
	{InsufficientFunds, MsgInsufficientFunds, []string{
		"insufficient funds", "insufficient balance", "not enough", "exceeds balance",
	}},
	{NetworkError, MsgNetwork, []string{
		"network error", "connection failed", "connection refused", "connection reset",
		"could not connect", "timeout", "timed out", "deadline exceeded",
		"fetch failed", "failed to fetch", "no such host",
	}},
	{InsufficientFunds, MsgGas, []string{
		"gas",
	}},
	{InvalidInput, MsgInvalidInput, []string{
		"invalid address", "invalid recipient", "invalid amount", "invalid input",
	}},
	{UnsupportedToken, MsgUnsupportedToken, []string{
		"token", "contract", "unsupported",
	}},
	{NetworkError, MsgWallet, []string{
		"wallet", "not connected", "no provider",
	}},
}

// Parsed is the classification of one error value.
type Parsed struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Original any      `json:"-"`
}

// Error implements error so a Parsed can travel in error returns.
func (p Parsed) Error() string { return p.Message }

// Unwrap exposes the original error, if it was one.
func (p Parsed) Unwrap() error {
	if err, ok := p.Original.(error); ok {
		return err
	}
	return nil
}

// messager matches values exposing their message through a method, like
// JSON-RPC error objects.
type messager interface {
	Message() string
}

// Normalize extracts the message of v: strings are used as is, errors
// through Error(), maps through their "message" key, values with a
// Message() method through it, anything else through fmt.
func Normalize(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case error:
		return e.Error()
	case messager:
		return e.Message()
	case map[string]any:
		if m, ok := e["message"]; ok {
			return fmt.Sprint(m)
		}
	case map[string]string:
		if m, ok := e["message"]; ok {
			return m
		}
	case fmt.Stringer:
		return e.String()
	}
	return fmt.Sprint(v)
}

// Parse classifies v. It is total: every input, nil included, yields a
// category and a message. Recognized errors get the fixed message of the
// matching phrase group; unrecognized ones keep their own message. Phrase
// groups are tried first, so a provider code such as 4100 on a message
// that reads as a rejection still classifies as UserRejected.
func Parse(v any) Parsed {
	if isNil(v) {
		return Parsed{Category: Unknown, Message: MsgEmpty, Original: v}
	}
	if err, ok := v.(error); ok {
		var p Parsed
		if errors.As(err, &p) {
			return p
		}
	}

	msg := Normalize(v)
	lower := strings.ToLower(msg)
	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return Parsed{Category: r.category, Message: r.message, Original: v}
			}
		}
	}
	// Provider codes only decide when no phrase matched.
	if err, ok := v.(error); ok {
		if c, ok := codeCategory(err); ok {
			return Parsed{Category: c, Message: messageFor(c), Original: v}
		}
	}
	if msg == "" {
		return Parsed{Category: Unknown, Message: MsgEmpty, Original: v}
	}
	return Parsed{Category: Unknown, Message: msg, Original: v}
}

// Classify returns the category of v.
func Classify(v any) Category {
	return Parse(v).Category
}

// Message returns the display message of v.
func Message(v any) string {
	return Parse(v).Message
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	if err, ok := v.(error); ok {
		return err == nil
	}
	return false
}

// EIP-1193 provider error codes.
const (
	codeUserRejected = 4001
	codeUnauthorized = 4100
	codeDisconnected = 4900
	codeChainDisconn = 4901
)

// coder matches JSON-RPC errors, rpc.Error in go-ethereum among them.
type coder interface {
	ErrorCode() int
}

func codeCategory(err error) (Category, bool) {
	var ce coder
	if !errors.As(err, &ce) {
		return Unknown, false
	}
	switch ce.ErrorCode() {
	case codeUserRejected:
		return UserRejected, true
	case codeUnauthorized, codeDisconnected, codeChainDisconn:
		return NetworkError, true
	}
	return Unknown, false
}

func messageFor(c Category) string {
	switch c {
	case UserRejected:
		return MsgUserRejected
	case InsufficientFunds:
		return MsgInsufficientFunds
	case NetworkError:
		return MsgNetwork
	case UnsupportedToken:
		return MsgUnsupportedToken
	case InvalidInput:
		return MsgInvalidInput
	}
	return MsgEmpty
}
