package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/wallet"
)

// ErrKeyRequired is returned when a transaction is built without a key.
var ErrKeyRequired = errors.New("private key is required for transactions")

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
// The returned TransactOpts can be used to send transactions to the blockchain.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, ErrKeyRequired
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}

// GetTransactOpts creates a transactor from the EVM client context.
// It automatically fetches the chain ID from the connected Ethereum client.
func (evm *EVMClient) GetTransactOpts(ctx context.Context, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, ErrKeyRequired
	}

	chainID, err := evm.Client.ChainID(ctx)
	if err != nil {
		zap.L().Error("failed to get chain ID", zap.Error(err))
		return nil, err
	}

	opts, err := GetTransactOpts(chainID, pk)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// SendNative signs and broadcasts a plain value transfer and returns its
// hash.
func (evm *EVMClient) SendNative(ctx context.Context, pk *ecdsa.PrivateKey, to common.Address, value *big.Int) (common.Hash, error) {
	opts, err := evm.GetTransactOpts(ctx, pk)
	if err != nil {
		return common.Hash{}, err
	}
	opts.Value = value
	// A value transfer to an account without code costs exactly TxGas;
	// estimating would reject recipients that are not contracts.
	opts.GasLimit = params.TxGas

	tx, err := bind.NewBoundContract(to, emptyABI, evm.Client, evm.Client, evm.Client).Transfer(opts)
	if err != nil {
		zap.L().Error("failed to send native transfer", zap.String("to", to.Hex()), zap.Error(err))
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// Transact signs and broadcasts a contract call and returns its hash. The
// gas limit is estimated by the node.
func (evm *EVMClient) Transact(ctx context.Context, pk *ecdsa.PrivateKey, call wallet.ContractCall) (common.Hash, error) {
	opts, err := evm.GetTransactOpts(ctx, pk)
	if err != nil {
		return common.Hash{}, err
	}
	contract := bind.NewBoundContract(call.Address, call.ABI, evm.Client, evm.Client, evm.Client)
	tx, err := contract.Transact(opts, call.Method, call.Args...)
	if err != nil {
		zap.L().Error("failed to transact",
			zap.String("contract", call.Address.Hex()),
			zap.String("method", call.Method),
			zap.Error(err))
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}
