// Package balance resolves the balance of a token for an account, picking
// the native balance query or an ERC-20 balanceOf call from the token
// selector.
package balance

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/format"
	"github.com/c13studio/c13-sdk/pkg/metrics"
	"github.com/c13studio/c13-sdk/pkg/tokens"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

// Query paths.
const (
	PathNative   = "native"
	PathContract = "contract"
)

// Params selects the balance to query. Zero Account and ChainID fall back
// to the connected account and chain.
type Params struct {
	Token    string
	Account  common.Address
	ChainID  uint64
	Disabled bool
}

// Plan is the outcome of resolving Params against one connection
// snapshot. At most one of NativeEnabled and ContractEnabled is set.
type Plan struct {
	Token           tokens.Token
	Account         common.Address
	ChainID         uint64
	NativeEnabled   bool
	ContractEnabled bool
}

// Path is the enabled query path, or "" when neither is.
func (p Plan) Path() string {
	switch {
	case p.NativeEnabled:
		return PathNative
	case p.ContractEnabled:
		return PathContract
	}
	return ""
}

// State is the published result of a Query.
type State struct {
	// Balance is the balance in whole token units; nil until a query has
	// returned data.
	Balance  *string
	Symbol   string
	Decimals int
	Loading  bool
	Err      error
}

// Resolver builds balance queries over a wallet reader.
type Resolver struct {
	accounts wallet.AccountObserver
	reader   wallet.Reader
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithTimeout bounds every chain read.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// NewResolver creates a Resolver. accounts may be nil when every query
// names its account and chain.
func NewResolver(accounts wallet.AccountObserver, reader wallet.Reader, opts ...Option) *Resolver {
	r := &Resolver{accounts: accounts, reader: reader}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Plan resolves p against the current connection snapshot. The snapshot
// is read once and never written.
func (r *Resolver) Plan(p Params) Plan {
	var snap wallet.Snapshot
	if r.accounts != nil {
		snap = r.accounts.Snapshot()
	}
	account := p.Account
	if account == (common.Address{}) {
		account = snap.Account
	}
	chainID := p.ChainID
	if chainID == 0 {
		chainID = snap.ChainID
	}

	sel := tokens.ParseSelector(p.Token)
	token := tokens.Resolve(sel, chainID)
	enabled := !p.Disabled && account != (common.Address{}) && chainID != 0
	native := sel.IsNative(chainID)
	return Plan{
		Token:           token,
		Account:         account,
		ChainID:         chainID,
		NativeEnabled:   enabled && native,
		ContractEnabled: enabled && !native && token.HasContract(),
	}
}

// Query creates a query for p.
func (r *Resolver) Query(p Params) *Query {
	return &Query{r: r, plan: r.Plan(p)}
}

// Fetch runs a one-off query for p.
func (r *Resolver) Fetch(ctx context.Context, p Params) State {
	return r.Query(p).Refetch(ctx)
}

// Query is a re-runnable balance query. Refetch may be called
// concurrently; each call takes a sequence number and its result is
// published only if no later call has published yet, so a slow stale
// response never overwrites a newer one.
type Query struct {
	r    *Resolver
	plan Plan

	mu      sync.Mutex
	issued  uint64
	applied uint64
	balance *string
	err     error
}

func (q *Query) Plan() Plan { return q.plan }

// Refetch runs the enabled path and returns the published state. A query
// with no enabled path publishes nothing and touches no network.
func (q *Query) Refetch(ctx context.Context) State {
	path := q.plan.Path()
	if path == "" {
		return q.State()
	}

	q.mu.Lock()
	q.issued++
	seq := q.issued
	q.mu.Unlock()

	if q.r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.r.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := q.fetch(ctx)
	q.r.metrics.ObserveRPC(q.plan.ChainID, path, start)

	q.mu.Lock()
	stale := seq <= q.applied
	if !stale {
		q.applied = seq
		q.err = err
		if err == nil {
			b := format.FormatUnits(raw, q.plan.Token.Decimals)
			q.balance = &b
		}
	}
	q.mu.Unlock()

	switch {
	case stale:
		q.r.metrics.BalanceQuery(path, "stale")
	case err != nil:
		q.r.metrics.BalanceQuery(path, "error")
		zap.L().Debug("Failed to get balance",
			zap.String("token", q.plan.Token.Symbol),
			zap.String("account", q.plan.Account.Hex()),
			zap.Uint64("chainID", q.plan.ChainID),
			zap.Error(err))
	default:
		q.r.metrics.BalanceQuery(path, "ok")
	}
	return q.State()
}

func (q *Query) fetch(ctx context.Context) (*big.Int, error) {
	if q.plan.NativeEnabled {
		return q.r.reader.BalanceAt(ctx, q.plan.ChainID, q.plan.Account)
	}
	out, err := q.r.reader.ReadContract(ctx, q.plan.ChainID, wallet.ContractCall{
		Address: q.plan.Token.Address,
		ABI:     tokens.ERC20(),
		Method:  tokens.MethodBalanceOf,
		Args:    []any{q.plan.Account},
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", tokens.MethodBalanceOf)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", tokens.MethodBalanceOf, out[0])
	}
	return v, nil
}

// State returns the published state. Loading is set while any Refetch
// issued after the last published one is still running. A failed refetch
// keeps the previously published balance next to the error.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := State{
		Symbol:   q.plan.Token.Symbol,
		Decimals: q.plan.Token.Decimals,
		Loading:  q.applied < q.issued,
		Err:      q.err,
	}
	if q.balance != nil {
		b := *q.balance
		st.Balance = &b
	}
	return st
}
