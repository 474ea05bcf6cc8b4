package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/format"
)

// InjectedID is the ID of the generic connector used when no preferred
// connector is available.
const InjectedID = "injected"

// DefaultPreferred lists the ID fragments of the preferred connectors.
var DefaultPreferred = []string{"bitget", "bitkeep"}

var (
	// ErrNoConnector is returned when neither a preferred nor the generic
	// injected connector is available.
	ErrNoConnector = errors.New("wallet: preferred or generic injected connector not found")
	// ErrNotConnected is returned by operations that need a connected wallet.
	ErrNotConnected = errors.New("wallet: not connected")
	// ErrSwitchUnsupported is returned when the active connector cannot
	// change chains.
	ErrSwitchUnsupported = errors.New("wallet: connector cannot switch chains")
)

// PickConnector returns the first connector whose ID contains one of the
// preferred fragments, else the connector with ID InjectedID.
func PickConnector(connectors []Connector, preferred ...string) (Connector, error) {
	for _, c := range connectors {
		id := strings.ToLower(c.ID())
		for _, p := range preferred {
			if p != "" && strings.Contains(id, strings.ToLower(p)) {
				return c, nil
			}
		}
	}
	for _, c := range connectors {
		if c.ID() == InjectedID {
			return c, nil
		}
	}
	return nil, ErrNoConnector
}

// State is the wallet as presented to the host.
type State struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	ChainID   uint64 `json:"chain_id,omitempty"`
	// Balance is the native balance in ether; empty when unknown.
	Balance string `json:"balance,omitempty"`
}

// Wallet drives the connection lifecycle over a set of connectors.
type Wallet struct {
	connectors []Connector
	preferred  []string
	reader     Reader
	store      *SessionStore
	reload     func() error

	mu     sync.RWMutex
	active Connector
	snap   Snapshot
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithPreferred overrides DefaultPreferred.
func WithPreferred(fragments ...string) Option {
	return func(w *Wallet) { w.preferred = fragments }
}

// WithSessionStore persists sessions in s; it is cleared on disconnect.
func WithSessionStore(s *SessionStore) Option {
	return func(w *Wallet) { w.store = s }
}

// WithReload installs the last resort hook run when disconnecting fails.
func WithReload(fn func() error) Option {
	return func(w *Wallet) { w.reload = fn }
}

// New creates a Wallet. reader is used for the native balance in State
// and may be nil.
func New(connectors []Connector, reader Reader, opts ...Option) *Wallet {
	w := &Wallet{
		connectors: connectors,
		preferred:  DefaultPreferred,
		reader:     reader,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Connect picks a connector and connects it.
func (w *Wallet) Connect(ctx context.Context) error {
	c, err := PickConnector(w.connectors, w.preferred...)
	if err != nil {
		zap.L().Error("Failed to connect wallet", zap.Error(err))
		return err
	}
	snap, err := c.Connect(ctx)
	if err != nil {
		zap.L().Error("Failed to connect wallet", zap.String("connector", c.ID()), zap.Error(err))
		return fmt.Errorf("connect %s: %w", c.Name(), err)
	}

	w.mu.Lock()
	w.active = c
	w.snap = snap
	w.mu.Unlock()

	if w.store != nil {
		w.store.Save(Session{ConnectorID: c.ID(), Snapshot: snap})
	}
	zap.L().Debug("Wallet connected",
		zap.String("connector", c.ID()),
		zap.String("account", snap.Account.Hex()),
		zap.Uint64("chainID", snap.ChainID))
	return nil
}

// Disconnect disconnects the active connector and then clears persisted
// session state on a best-effort basis. If the connector fails to
// disconnect, the reload hook is run and the connector's error returned.
func (w *Wallet) Disconnect(ctx context.Context) error {
	w.mu.RLock()
	c := w.active
	w.mu.RUnlock()
	if c == nil {
		return nil
	}

	if err := c.Disconnect(ctx); err != nil {
		zap.L().Error("Failed to disconnect wallet", zap.String("connector", c.ID()), zap.Error(err))
		if w.reload != nil {
			if rerr := w.reload(); rerr != nil {
				zap.L().Error("Failed to reload", zap.Error(rerr))
			}
		}
		return err
	}

	w.mu.Lock()
	w.active = nil
	w.snap = Snapshot{}
	w.mu.Unlock()

	w.clearState(c)
	return nil
}

func (w *Wallet) clearState(c Connector) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("Failed to clear wallet storage", zap.Any("panic", r))
		}
	}()
	if sc, ok := c.(StateClearer); ok {
		if err := sc.ClearState(); err != nil {
			zap.L().Warn("Failed to clear wallet storage", zap.String("connector", c.ID()), zap.Error(err))
		}
	}
	if w.store != nil {
		if err := w.store.ClearState(); err != nil {
			zap.L().Warn("Failed to clear session store", zap.Error(err))
		}
	}
}

// Snapshot returns the current connection state. It implements
// AccountObserver. A connector that observes its own account and chain is
// asked directly, so changes made behind the wallet's back are seen;
// otherwise the snapshot taken at Connect is returned.
func (w *Wallet) Snapshot() Snapshot {
	w.mu.RLock()
	c, snap := w.active, w.snap
	w.mu.RUnlock()
	if o, ok := c.(AccountObserver); ok {
		return o.Snapshot()
	}
	return snap
}

// SwitchChain moves the active connector to chainID and refreshes the
// persisted session.
func (w *Wallet) SwitchChain(chainID uint64) error {
	w.mu.RLock()
	c := w.active
	w.mu.RUnlock()
	if c == nil {
		return ErrNotConnected
	}
	cs, ok := c.(ChainSwitcher)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSwitchUnsupported, c.Name())
	}
	if err := cs.SwitchChain(chainID); err != nil {
		zap.L().Error("Failed to switch chain", zap.String("connector", c.ID()), zap.Uint64("chainID", chainID), zap.Error(err))
		return err
	}

	w.mu.Lock()
	if w.active == c {
		w.snap.ChainID = chainID
	}
	w.mu.Unlock()

	snap := w.Snapshot()
	if w.store != nil {
		w.store.Save(Session{ConnectorID: c.ID(), Snapshot: snap})
	}
	zap.L().Debug("Wallet switched chain", zap.String("connector", c.ID()), zap.Uint64("chainID", snap.ChainID))
	return nil
}

// Active returns the connected connector, or nil.
func (w *Wallet) Active() Connector {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

// State returns the wallet state with the native balance formatted in
// ether. Balance read failures leave Balance empty.
func (w *Wallet) State(ctx context.Context) State {
	snap := w.Snapshot()
	st := State{Connected: snap.Connected, ChainID: snap.ChainID}
	if !snap.Connected {
		return st
	}
	st.Address = snap.Account.Hex()
	if w.reader == nil {
		return st
	}
	bal, err := w.reader.BalanceAt(ctx, snap.ChainID, snap.Account)
	if err != nil {
		zap.L().Debug("native balance unavailable", zap.Error(err))
		if w.store != nil {
			st.Balance, _ = w.store.Balance()
		}
		return st
	}
	if bal != nil && bal.Sign() > 0 {
		st.Balance = format.FormatEther(bal)
		if w.store != nil {
			w.store.SaveBalance(st.Balance)
		}
	}
	return st
}
