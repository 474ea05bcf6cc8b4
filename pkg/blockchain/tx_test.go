package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/tokens"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

func TestGetTransactOpts(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	from := crypto.PubkeyToAddress(priv.PublicKey)

	testCases := []struct {
		name    string
		chainID *big.Int
		key     *ecdsa.PrivateKey
		wantErr bool
	}{
		{"mainnet", new(big.Int).SetUint64(chains.MainnetID), priv, false},
		{"testnet", new(big.Int).SetUint64(chains.TestnetID), priv, false},
		{"nil key", new(big.Int).SetUint64(chains.MainnetID), nil, true},
		{"nil chain", nil, priv, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := GetTransactOpts(tc.chainID, tc.key)
			if tc.wantErr {
				if err == nil || opts != nil {
					t.Fatalf("expected error, got opts=%v err=%v", opts, err)
				}
				if tc.key == nil && !errors.Is(err, ErrKeyRequired) {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTransactOpts: %v", err)
			}
			if opts.From != from {
				t.Fatalf("From = %s, want %s", opts.From.Hex(), from.Hex())
			}

			// The signer must replay-protect with the requested chain.
			tx := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: params.TxGas, GasPrice: big.NewInt(1), To: &from, Value: big.NewInt(1)})
			signed, err := opts.Signer(from, tx)
			if err != nil {
				t.Fatalf("Signer: %v", err)
			}
			if signed.ChainId().Cmp(tc.chainID) != 0 {
				t.Fatalf("signed for chain %s, want %s", signed.ChainId(), tc.chainID)
			}
		})
	}
}

// newFundedClient returns a client over a simulated backend holding 10 ETH
// for a fresh key.
func newFundedClient(t *testing.T) (*EVMClient, *simulated.Backend, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	funds := new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))
	sim := simulated.NewBackend(types.GenesisAlloc{crypto.PubkeyToAddress(key.PublicKey): {Balance: funds}})
	t.Cleanup(func() { _ = sim.Close() })
	return NewEVMClient(sim.Client(), simChainID), sim, key
}

func TestEVMClient_SendNative(t *testing.T) {
	evm, sim, key := newFundedClient(t)
	ctx := context.Background()
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	value := big.NewInt(params.Ether / 4)

	if _, err := evm.SendNative(ctx, nil, to, value); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}

	hash, err := evm.SendNative(ctx, key, to, value)
	if err != nil {
		t.Fatalf("SendNative: %v", err)
	}
	sim.Commit()

	tx, _, err := sim.Client().TransactionByHash(ctx, hash)
	if err != nil {
		t.Fatalf("TransactionByHash: %v", err)
	}
	if tx.Gas() != params.TxGas || tx.Value().Cmp(value) != 0 || *tx.To() != to {
		t.Fatalf("unexpected tx gas=%d value=%s to=%s", tx.Gas(), tx.Value(), tx.To().Hex())
	}
	if tx.ChainId().Uint64() != simChainID {
		t.Fatalf("signed for chain %s", tx.ChainId())
	}
	got, err := evm.Client.BalanceAt(ctx, to, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(value) != 0 {
		t.Fatalf("recipient balance %s, want %s", got, value)
	}
}

func TestEVMClient_Transact(t *testing.T) {
	evm, _, key := newFundedClient(t)
	ctx := context.Background()
	call := wallet.ContractCall{
		Address: common.HexToAddress("0x4444444444444444444444444444444444444444"),
		ABI:     tokens.ERC20(),
		Method:  tokens.MethodTransfer,
		Args:    []any{common.HexToAddress("0x3333333333333333333333333333333333333333"), big.NewInt(1)},
	}

	if _, err := evm.Transact(ctx, nil, call); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
	// Gas estimation refuses addresses without code.
	if _, err := evm.Transact(ctx, key, call); err == nil || !strings.Contains(err.Error(), "no contract code") {
		t.Fatalf("expected missing code error, got %v", err)
	}
}
