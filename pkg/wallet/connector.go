// Package wallet defines the boundary between the SDK and the wallet
// connector that owns accounts, signing and broadcast: the interfaces the
// SDK consumes, the Pending future returned by submissions, connector
// selection and the connect/disconnect lifecycle.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Snapshot is the connected account and chain as seen at one instant.
// Resolvers take one snapshot per call and never write it back.
type Snapshot struct {
	Account   common.Address
	ChainID   uint64
	Connected bool
}

// AccountObserver exposes the externally owned connection state.
type AccountObserver interface {
	Snapshot() Snapshot
}

// ContractCall identifies a contract method invocation.
type ContractCall struct {
	Address common.Address
	ABI     abi.ABI
	Method  string
	Args    []any
}

// NativeSend is a plain value transfer of the chain's native currency.
type NativeSend struct {
	To      common.Address
	Value   *big.Int
	ChainID uint64
}

// Reader performs read-only chain queries.
type Reader interface {
	BalanceAt(ctx context.Context, chainID uint64, account common.Address) (*big.Int, error)
	ReadContract(ctx context.Context, chainID uint64, call ContractCall) ([]any, error)
}

// Sender signs and broadcasts transactions. Both methods return at once;
// the returned Pending completes when the connector has a transaction hash
// or has given up.
type Sender interface {
	SendNative(ctx context.Context, req NativeSend) *Pending
	WriteContract(ctx context.Context, chainID uint64, call ContractCall) *Pending
}

// ReceiptWaiter observes confirmation of a broadcast transaction.
type ReceiptWaiter interface {
	WaitReceipt(ctx context.Context, chainID uint64, hash common.Hash) (*types.Receipt, error)
}

// Connector is a named way of connecting a wallet.
type Connector interface {
	ID() string
	Name() string
	Connect(ctx context.Context) (Snapshot, error)
	Disconnect(ctx context.Context) error
}

// ChainSwitcher is implemented by connectors that can move the session to
// another chain.
type ChainSwitcher interface {
	SwitchChain(chainID uint64) error
}

// StateClearer is implemented by connectors that persist session state.
type StateClearer interface {
	ClearState() error
}
