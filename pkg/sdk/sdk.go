package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/balance"
	"github.com/c13studio/c13-sdk/pkg/blockchain"
	"github.com/c13studio/c13-sdk/pkg/config"
	"github.com/c13studio/c13-sdk/pkg/metrics"
	"github.com/c13studio/c13-sdk/pkg/transfer"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

const (
	Name    = "c13-sdk"
	Version = "0.0.1"
)

// SDK is the public interface for reading balances and sending transfers
// on Morph, and for releasing resources.
type SDK interface {
	// Wallet returns the wallet the SDK connected on creation.
	Wallet() *wallet.Wallet

	// Balance resolves the balance of token (a symbol, a contract address,
	// or "" for the native currency) for the connected account.
	Balance(ctx context.Context, token string) balance.State

	// BalanceQuery builds a refetchable balance query.
	BalanceQuery(p balance.Params) *balance.Query

	// Transfer validates req and submits it; it returns once the connector
	// has a transaction hash.
	Transfer(ctx context.Context, req transfer.Request) (*transfer.Outcome, error)

	// Send is Transfer followed by waiting for the receipt.
	Send(ctx context.Context, req transfer.Request) (*transfer.Outcome, error)

	// EstimateFee estimates the fee of a transfer of token on the
	// connected chain.
	EstimateFee(ctx context.Context, token string) transfer.Fee

	// SwitchChain moves the connected wallet to chainID. Balances, fees
	// and transfers follow the new chain.
	SwitchChain(chainID uint64) error

	// Heartbeat reports the reachability of every configured chain.
	Heartbeat(ctx context.Context) []ChainHealth

	// Close disconnects the wallet and releases the chain clients.
	Close()
}

// logLevel is shared by the global logger so Config.Debug can raise it.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the concrete SDK implementation.
type Core struct {
	*config.Config

	conn       *blockchain.Connector
	wallet     *wallet.Wallet
	resolver   *balance.Resolver
	transferer *transfer.Transferer
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
}

// Option configures a Core.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	onSuccess  func(common.Hash)
	onError    func(error)
}

// WithRegisterer registers the SDK metrics with reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTransferHooks sets callbacks run after each successful submission and
// each failed transfer.
func WithTransferHooks(onSuccess func(common.Hash), onError func(error)) Option {
	return func(o *options) {
		o.onSuccess = onSuccess
		o.onError = onError
	}
}

// NewSDK initializes the SDK from cfg and aborts the process if the
// configuration is invalid or a chain cannot be reached. Use New to handle
// the error instead.
func NewSDK(cfg *config.Config, opts ...Option) SDK {
	core, err := New(context.Background(), cfg, opts...)
	if err != nil {
		zap.L().Fatal("Init SDK failed", zap.Error(err))
	}
	return core
}

// New validates cfg, dials every configured chain and connects the wallet
// when cfg names an account or a private key.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var clients []*blockchain.EVMClient
	for _, id := range cfg.ChainIDs() {
		endpoint, err := cfg.Endpoint(id)
		if err != nil {
			closeAll(clients)
			return nil, err
		}
		dctx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Dial)
		evm, err := blockchain.InitEvm(dctx, id, endpoint)
		cancel()
		if err != nil {
			closeAll(clients)
			return nil, fmt.Errorf("init chain %d: %w", id, err)
		}
		clients = append(clients, evm)
	}
	return NewWithClients(ctx, cfg, clients, opts...)
}

// NewWithClients is New over already connected clients. The SDK takes
// ownership of them and closes them on Close.
func NewWithClients(ctx context.Context, cfg *config.Config, clients []*blockchain.EVMClient, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Debug {
		logLevel.SetLevel(zap.DebugLevel)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &Core{Config: cfg}
	if o.registerer == nil {
		c.registry = prometheus.NewRegistry()
		o.registerer = c.registry
	}
	c.metrics = metrics.New(o.registerer)

	connOpts := []blockchain.ConnectorOption{
		blockchain.WithSubmitTimeout(cfg.Timeouts.ChainSubmit),
		blockchain.WithConnectorMetrics(c.metrics),
	}
	if pk := cfg.GetPrivateKey(); pk != nil {
		connOpts = append(connOpts, blockchain.WithKey(pk))
	} else if cfg.Account != "" {
		connOpts = append(connOpts, blockchain.WithAccount(common.HexToAddress(cfg.Account)))
	}
	c.conn = blockchain.NewConnector(cfg.DefaultChainID, clients, connOpts...)

	c.wallet = wallet.New([]wallet.Connector{c.conn}, c.conn,
		wallet.WithPreferred(cfg.PreferredConnectors...),
		wallet.WithSessionStore(wallet.NewSessionStore(cfg.Timeouts.SessionTTL)),
	)
	c.resolver = balance.NewResolver(c.wallet, c.conn,
		balance.WithTimeout(cfg.Timeouts.ChainRead),
		balance.WithMetrics(c.metrics),
	)

	tOpts := []transfer.Option{
		transfer.WithTimeouts(cfg.Timeouts.ChainSubmit, cfg.Timeouts.ReceiptWait),
		transfer.WithMetrics(c.metrics),
	}
	if o.onSuccess != nil {
		tOpts = append(tOpts, transfer.WithOnSuccess(o.onSuccess))
	}
	if o.onError != nil {
		tOpts = append(tOpts, transfer.WithOnError(o.onError))
	}
	c.transferer = transfer.NewTransferer(c.wallet, c.conn, c.conn, tOpts...)

	if cfg.GetPrivateKey() != nil || cfg.Account != "" {
		if err := c.wallet.Connect(ctx); err != nil {
			c.conn.Close()
			return nil, err
		}
		if cfg.Debug {
			zap.L().Debug("signer address", zap.String("addr", c.wallet.Snapshot().Account.Hex()))
		}
	}
	return c, nil
}

func closeAll(clients []*blockchain.EVMClient) {
	for _, cl := range clients {
		cl.Close()
	}
}

func (c *Core) Wallet() *wallet.Wallet { return c.wallet }

// Connector returns the key-backed connector, for chain switching and
// direct client access.
func (c *Core) Connector() *blockchain.Connector { return c.conn }

// Gatherer returns the private metrics registry, or nil when the SDK was
// created WithRegisterer.
func (c *Core) Gatherer() prometheus.Gatherer {
	if c.registry == nil {
		return nil
	}
	return c.registry
}

func (c *Core) Balance(ctx context.Context, token string) balance.State {
	return c.resolver.Fetch(ctx, balance.Params{Token: token})
}

func (c *Core) BalanceQuery(p balance.Params) *balance.Query {
	return c.resolver.Query(p)
}

func (c *Core) Transfer(ctx context.Context, req transfer.Request) (*transfer.Outcome, error) {
	return c.transferer.Transfer(ctx, req)
}

func (c *Core) Send(ctx context.Context, req transfer.Request) (*transfer.Outcome, error) {
	o, err := c.transferer.Transfer(ctx, req)
	if err != nil {
		return o, err
	}
	return o, c.transferer.Confirm(ctx, o)
}

// Status reports the transferer's aggregate state.
func (c *Core) Status() transfer.Status {
	return c.transferer.Status()
}

// EstimateFee prices the fixed gas estimate at the node's suggested gas
// price, falling back to transfer.DefaultGasPrice when the node fails.
func (c *Core) EstimateFee(ctx context.Context, token string) transfer.Fee {
	chainID := c.chainID()
	gasPrice := transfer.DefaultGasPrice
	if price, err := c.suggestGasPrice(ctx, chainID); err != nil {
		zap.L().Warn("gas price unavailable, using default", zap.Uint64("chainID", chainID), zap.Error(err))
	} else {
		gasPrice = price
	}
	return transfer.EstimateFee(token, chainID, gasPrice)
}

func (c *Core) suggestGasPrice(ctx context.Context, chainID uint64) (*big.Int, error) {
	cl, err := c.conn.Client(chainID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
	defer cancel()
	price, err := cl.Client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errors.New("node suggested no gas price")
	}
	return price, nil
}

func (c *Core) SwitchChain(chainID uint64) error {
	return c.wallet.SwitchChain(chainID)
}

func (c *Core) chainID() uint64 {
	if snap := c.wallet.Snapshot(); snap.ChainID != 0 {
		return snap.ChainID
	}
	return c.DefaultChainID
}

// Close disconnects the wallet and closes every chain client.
func (c *Core) Close() {
	if err := c.wallet.Disconnect(context.Background()); err != nil {
		zap.L().Warn("wallet disconnect failed", zap.Error(err))
	}
	c.conn.Close()
}
