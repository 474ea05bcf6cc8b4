package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

var (
	// ErrChainMismatch is returned when an endpoint serves another chain
	// than the one it was dialed for.
	ErrChainMismatch = errors.New("endpoint chain ID mismatch")
	// ErrTxReverted is returned with the receipt of a mined but failed
	// transaction.
	ErrTxReverted = errors.New("tx reverted")
)

// Backend is the part of an Ethereum client the SDK uses. Both
// *ethclient.Client and the simulated backend's client satisfy it.
type Backend interface {
	bind.ContractBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EVMClient talks to one chain.
type EVMClient struct {
	Client  Backend
	ChainID uint64
	close   func()
}

// NewEVMClient wraps an existing backend serving chainID.
func NewEVMClient(backend Backend, chainID uint64) *EVMClient {
	return &EVMClient{Client: backend, ChainID: chainID}
}

// InitEvm dials endpoint, or the registry RPC URL of chainID when endpoint
// is empty, and checks that the node serves chainID.
func InitEvm(ctx context.Context, chainID uint64, endpoint string) (*EVMClient, error) {
	if endpoint == "" {
		c, err := chains.ByID(chainID)
		if err != nil {
			return nil, err
		}
		endpoint = c.RPCURL
	}

	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		zap.L().Error("Failed to get chain ID", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	if remote.Uint64() != chainID {
		client.Close()
		return nil, fmt.Errorf("%w: %s serves %s, want %d", ErrChainMismatch, endpoint, remote, chainID)
	}

	return &EVMClient{Client: client, ChainID: chainID, close: client.Close}, nil
}

// Close releases the dialed connection, if any.
func (evm *EVMClient) Close() {
	if evm.close != nil {
		evm.close()
	}
}

// NativeBalance returns the latest native balance of account in wei.
func (evm *EVMClient) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := evm.Client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", account.Hex(), err)
	}
	return bal, nil
}

// Call performs a read-only contract call at the latest block.
func (evm *EVMClient) Call(ctx context.Context, call wallet.ContractCall) ([]any, error) {
	contract := bind.NewBoundContract(call.Address, call.ABI, evm.Client, evm.Client, evm.Client)
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, call.Method, call.Args...); err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", call.Method, call.Address.Hex(), err)
	}
	return out, nil
}

// GetCurrentBlockNumberCtx returns the latest block number using the provided context.
func (evm *EVMClient) GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error) {
	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. A reverted transaction returns its
// receipt together with ErrTxReverted. Unknown transactions and a lagging
// transaction index are both retried.
func (evm *EVMClient) WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := 100 * time.Millisecond
	for {
		receipt, err := evm.Client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w: %s", ErrTxReverted, txHash)
			}
			return receipt, nil
		case receiptPending(err):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if maxBackoff > 0 && backoff > maxBackoff {
				backoff = maxBackoff
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}

// txIndexing is reported by geth while its transaction index trails the
// head; the receipt may exist but cannot be looked up yet.
const txIndexing = "transaction indexing is in progress"

// receiptPending reports whether a receipt lookup error means "not yet".
func receiptPending(err error) bool {
	if errors.Is(err, ethereum.NotFound) {
		return true
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok && strings.Contains(s, txIndexing) {
			return true
		}
	}
	return strings.Contains(err.Error(), txIndexing)
}
