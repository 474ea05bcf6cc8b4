package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/metrics"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

// ConnectorID is the ID of the key-backed connector. It is the generic
// injected connector of the SDK.
const ConnectorID = wallet.InjectedID

var (
	// ErrNoClient is returned for chains the connector has no client for.
	ErrNoClient = errors.New("no client for chain")
	// ErrNoKey is returned when a send is attempted without a private key.
	ErrNoKey = errors.New("no private key configured")
)

// Connector serves the wallet interfaces from a set of chain clients and,
// optionally, a private key used to sign.
type Connector struct {
	clients      map[uint64]*EVMClient
	key          *ecdsa.PrivateKey
	account      common.Address
	defaultChain uint64

	submitTimeout time.Duration
	maxBackoff    time.Duration
	metrics       *metrics.Metrics

	mu        sync.RWMutex
	connected bool
	chainID   uint64
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithKey signs with pk and connects as its address.
func WithKey(pk *ecdsa.PrivateKey) ConnectorOption {
	return func(c *Connector) {
		c.key = pk
		if addr := GetAddressFromPrivateKeyECDSA(pk); addr != nil {
			c.account = *addr
		}
	}
}

// WithAccount connects as account without a key: reads work, sends fail
// with ErrNoKey.
func WithAccount(account common.Address) ConnectorOption {
	return func(c *Connector) {
		if c.key == nil {
			c.account = account
		}
	}
}

// WithSubmitTimeout bounds the signing and broadcast of one transaction,
// independently of the caller's context.
func WithSubmitTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) { c.submitTimeout = d }
}

// WithMaxBackoff caps the receipt polling interval.
func WithMaxBackoff(d time.Duration) ConnectorOption {
	return func(c *Connector) { c.maxBackoff = d }
}

// WithConnectorMetrics records chain call latency in m.
func WithConnectorMetrics(m *metrics.Metrics) ConnectorOption {
	return func(c *Connector) { c.metrics = m }
}

// NewConnector creates a connector over clients; defaultChain is the chain
// selected on Connect.
func NewConnector(defaultChain uint64, clients []*EVMClient, opts ...ConnectorOption) *Connector {
	c := &Connector{
		clients:      make(map[uint64]*EVMClient, len(clients)),
		defaultChain: defaultChain,
		maxBackoff:   5 * time.Second,
	}
	for _, cl := range clients {
		c.clients[cl.ChainID] = cl
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Connector) ID() string   { return ConnectorID }
func (c *Connector) Name() string { return "Private key" }

// Connect selects the default chain. It fails when there is no account or
// no client for that chain.
func (c *Connector) Connect(ctx context.Context) (wallet.Snapshot, error) {
	if c.account == (common.Address{}) {
		return wallet.Snapshot{}, fmt.Errorf("wallet not connected: %w", ErrNoKey)
	}
	if _, err := c.client(c.defaultChain); err != nil {
		return wallet.Snapshot{}, err
	}
	c.mu.Lock()
	c.connected = true
	c.chainID = c.defaultChain
	c.mu.Unlock()
	return c.Snapshot(), nil
}

func (c *Connector) Disconnect(context.Context) error {
	c.mu.Lock()
	c.connected = false
	c.chainID = 0
	c.mu.Unlock()
	return nil
}

// SwitchChain selects chainID for subsequent snapshots.
func (c *Connector) SwitchChain(chainID uint64) error {
	if _, err := c.client(chainID); err != nil {
		return err
	}
	c.mu.Lock()
	c.chainID = chainID
	c.mu.Unlock()
	return nil
}

// Snapshot implements wallet.AccountObserver.
func (c *Connector) Snapshot() wallet.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return wallet.Snapshot{}
	}
	return wallet.Snapshot{Account: c.account, ChainID: c.chainID, Connected: true}
}

// Client returns the client of chainID.
func (c *Connector) Client(chainID uint64) (*EVMClient, error) {
	return c.client(chainID)
}

func (c *Connector) client(chainID uint64) (*EVMClient, error) {
	cl, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrNoClient, chainID)
	}
	return cl, nil
}

// Close closes every client.
func (c *Connector) Close() {
	for _, cl := range c.clients {
		cl.Close()
	}
}

func (c *Connector) BalanceAt(ctx context.Context, chainID uint64, account common.Address) (*big.Int, error) {
	cl, err := c.client(chainID)
	if err != nil {
		return nil, err
	}
	defer c.metrics.ObserveRPC(chainID, "eth_getBalance", time.Now())
	return cl.NativeBalance(ctx, account)
}

func (c *Connector) ReadContract(ctx context.Context, chainID uint64, call wallet.ContractCall) ([]any, error) {
	cl, err := c.client(chainID)
	if err != nil {
		return nil, err
	}
	defer c.metrics.ObserveRPC(chainID, call.Method, time.Now())
	return cl.Call(ctx, call)
}

// SendNative signs and broadcasts in the background; the Pending completes
// with the transaction hash or the failure.
func (c *Connector) SendNative(ctx context.Context, req wallet.NativeSend) *wallet.Pending {
	return c.submit(ctx, req.ChainID, func(ctx context.Context, cl *EVMClient) (common.Hash, error) {
		return cl.SendNative(ctx, c.key, req.To, req.Value)
	})
}

// WriteContract signs and broadcasts a contract call in the background.
func (c *Connector) WriteContract(ctx context.Context, chainID uint64, call wallet.ContractCall) *wallet.Pending {
	return c.submit(ctx, chainID, func(ctx context.Context, cl *EVMClient) (common.Hash, error) {
		return cl.Transact(ctx, c.key, call)
	})
}

// submit runs send detached from the caller's cancellation: once handed
// over, a submission is owned by the connector and bounded only by the
// submit timeout.
func (c *Connector) submit(ctx context.Context, chainID uint64, send func(context.Context, *EVMClient) (common.Hash, error)) *wallet.Pending {
	if c.key == nil {
		return wallet.Failed(fmt.Errorf("wallet not connected: %w", ErrNoKey))
	}
	cl, err := c.client(chainID)
	if err != nil {
		return wallet.Failed(err)
	}

	p := wallet.NewPending()
	go func() {
		sctx := context.WithoutCancel(ctx)
		if c.submitTimeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, c.submitTimeout)
			defer cancel()
		}
		start := time.Now()
		hash, err := send(sctx, cl)
		c.metrics.ObserveRPC(chainID, "eth_sendRawTransaction", start)
		if err != nil {
			p.Reject(err)
			return
		}
		zap.L().Debug("Transaction broadcast", zap.Uint64("chainID", chainID), zap.String("txHash", hash.Hex()))
		p.Resolve(hash)
	}()
	return p
}

// WaitReceipt waits until hash is mined. Reverted transactions return
// their receipt without error; the caller inspects its status.
func (c *Connector) WaitReceipt(ctx context.Context, chainID uint64, hash common.Hash) (*types.Receipt, error) {
	cl, err := c.client(chainID)
	if err != nil {
		return nil, err
	}
	receipt, err := cl.WaitForTransaction(ctx, hash, c.maxBackoff)
	if errors.Is(err, ErrTxReverted) && receipt != nil {
		return receipt, nil
	}
	return receipt, err
}
