package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/errclass"
	"github.com/c13studio/c13-sdk/pkg/metrics"
	"github.com/c13studio/c13-sdk/pkg/tokens"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

// ErrReverted is recorded when a transaction was mined but failed.
var ErrReverted = errors.New("transaction failed to execute")

// Request is one transfer as asked for by the caller.
type Request struct {
	// To is the recipient address.
	To string `json:"to"`
	// Amount is a decimal string in whole token units, e.g. "1.5".
	Amount string `json:"amount"`
	// Token is a symbol or a contract address.
	Token string `json:"token"`
	// ChainID overrides the connected chain when non-zero.
	ChainID uint64 `json:"chain_id,omitempty"`
	// Balance, when set, is the sender's balance of Token in whole units;
	// the amount is then also checked against it.
	Balance string `json:"balance,omitempty"`
}

// Status is the aggregate view of a Transferer: whether any submission
// is awaiting its hash and the result of the latest attempt.
type Status struct {
	Loading bool
	Err     error
	Hash    common.Hash
}

// Transferer validates requests and hands them to a wallet connector.
// Attempts are independent: nothing is serialized or deduplicated, nonce
// management belongs to the connector.
type Transferer struct {
	accounts wallet.AccountObserver
	sender   wallet.Sender
	receipts wallet.ReceiptWaiter

	onSuccess      func(common.Hash)
	onError        func(error)
	submitTimeout  time.Duration
	receiptTimeout time.Duration
	metrics        *metrics.Metrics

	inFlight atomic.Int64
	mu       sync.RWMutex
	lastErr  error
	lastHash common.Hash
}

// Option configures a Transferer.
type Option func(*Transferer)

// WithOnSuccess is called with the hash of every submitted transaction.
func WithOnSuccess(fn func(common.Hash)) Option {
	return func(t *Transferer) { t.onSuccess = fn }
}

// WithOnError is called with the raw error of every rejected or failed
// attempt. Pass it through errclass.Parse for display.
func WithOnError(fn func(error)) Option {
	return func(t *Transferer) { t.onError = fn }
}

// WithTimeouts bounds the wait for a transaction hash and for its receipt.
// Zero leaves the respective wait bounded by the caller's context only.
func WithTimeouts(submit, receipt time.Duration) Option {
	return func(t *Transferer) {
		t.submitTimeout = submit
		t.receiptTimeout = receipt
	}
}

// WithMetrics records transfer states and error categories in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transferer) { t.metrics = m }
}

// NewTransferer creates a Transferer. receipts may be nil if Confirm is
// never used.
func NewTransferer(accounts wallet.AccountObserver, sender wallet.Sender, receipts wallet.ReceiptWaiter, opts ...Option) *Transferer {
	t := &Transferer{
		accounts: accounts,
		sender:   sender,
		receipts: receipts,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Transfer validates req, submits it through the connector and waits
// until the connector reports a transaction hash. The returned Outcome is
// Rejected when validation failed (nothing was sent), Failed when the
// connector gave up, and Submitted otherwise; the error mirrors Outcome.Err.
func (t *Transferer) Transfer(ctx context.Context, req Request) (*Outcome, error) {
	t.mu.Lock()
	t.lastErr = nil
	t.lastHash = common.Hash{}
	t.mu.Unlock()

	o := newOutcome(req)
	t.enter(o, Validating)

	token, value, chainID, err := t.validate(req)
	if err != nil {
		t.metrics.TransferState(Rejected.String())
		return o, t.report(o, o.fail(Rejected, err))
	}
	o.mu.Lock()
	o.token = token
	o.value = value
	o.ChainID = chainID
	o.mu.Unlock()
	t.enter(o, Submitting)

	hash, err := t.submit(ctx, to(req), token, value, chainID)
	if err != nil {
		t.metrics.TransferState(Failed.String())
		return o, t.report(o, o.fail(Failed, err))
	}

	o.mu.Lock()
	o.hash = hash
	o.mu.Unlock()
	t.enter(o, Submitted)

	t.mu.Lock()
	t.lastHash = hash
	t.mu.Unlock()

	zap.L().Debug("Transfer submitted",
		zap.String("id", o.ID.String()),
		zap.String("token", token.Symbol),
		zap.Uint64("chainID", chainID),
		zap.String("txHash", hash.Hex()))
	if t.onSuccess != nil {
		t.onSuccess(hash)
	}
	return o, nil
}

func to(req Request) common.Address {
	return common.HexToAddress(req.To)
}

func (t *Transferer) validate(req Request) (tokens.Token, *big.Int, uint64, error) {
	chainID := req.ChainID
	if chainID == 0 && t.accounts != nil {
		chainID = t.accounts.Snapshot().ChainID
	}
	token, value, err := ValidateRequest(req, chainID)
	if err != nil {
		return tokens.Token{}, nil, 0, err
	}
	return token, value, chainID, nil
}

// ValidateRequest applies the request rules in order: recipient, positive
// amount, token present, chain known, token supported, then the amount
// rules that depend on the token precision. It returns the resolved token
// and the amount in smallest units. Nothing here touches the network.
func ValidateRequest(req Request, chainID uint64) (tokens.Token, *big.Int, error) {
	if err := ValidateAddress(req.To); err != nil {
		return tokens.Token{}, nil, err
	}
	if _, err := positiveAmount(req.Amount); err != nil {
		return tokens.Token{}, nil, err
	}
	if strings.TrimSpace(req.Token) == "" {
		return tokens.Token{}, nil, invalid("token", ErrTokenRequired)
	}
	if chainID == 0 {
		return tokens.Token{}, nil, invalid("chain", ErrChainUnavailable)
	}

	sel := tokens.ParseSelector(strings.TrimSpace(req.Token))
	if !tokens.IsRegistered(sel, chainID) {
		return tokens.Token{}, nil, invalid("token", fmt.Errorf("%w: %s", ErrUnsupportedToken, sel))
	}
	token := tokens.Resolve(sel, chainID)

	var err error
	if req.Balance != "" {
		err = ValidateAmount(req.Amount, req.Balance, token.Decimals)
	} else {
		err = ValidateAmountFormat(req.Amount, token.Decimals)
	}
	if err != nil {
		return tokens.Token{}, nil, err
	}

	value, err := ParseTransferAmount(req.Amount, token.Decimals)
	if err != nil {
		return tokens.Token{}, nil, invalid("amount", err)
	}
	return token, value, nil
}

// submit hands the transfer to the connector, native or contract path, and
// waits for the Pending to complete or the submit timeout to pass.
func (t *Transferer) submit(ctx context.Context, recipient common.Address, token tokens.Token, value *big.Int, chainID uint64) (common.Hash, error) {
	var pending *wallet.Pending
	if token.Native {
		pending = t.sender.SendNative(ctx, wallet.NativeSend{
			To:      recipient,
			Value:   value,
			ChainID: chainID,
		})
	} else {
		pending = t.sender.WriteContract(ctx, chainID, wallet.ContractCall{
			Address: token.Address,
			ABI:     tokens.ERC20(),
			Method:  tokens.MethodTransfer,
			Args:    []any{recipient, value},
		})
	}

	t.inFlight.Add(1)
	t.metrics.InFlight(1)
	defer func() {
		t.inFlight.Add(-1)
		t.metrics.InFlight(-1)
	}()

	waitCtx := ctx
	if t.submitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, t.submitTimeout)
		defer cancel()
	}
	hash, err := pending.Wait(waitCtx)
	if err != nil {
		return common.Hash{}, err
	}
	if hash == (common.Hash{}) {
		return common.Hash{}, errors.New("connector completed without a transaction hash")
	}
	return hash, nil
}

// Confirm waits for the receipt of a Submitted outcome. A mined but
// reverted transaction fails the outcome with ErrReverted.
func (t *Transferer) Confirm(ctx context.Context, o *Outcome) error {
	if t.receipts == nil {
		return errors.New("transfer: no receipt waiter configured")
	}
	if err := o.transition(Confirming); err != nil {
		return err
	}
	t.metrics.TransferState(Confirming.String())

	if t.receiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.receiptTimeout)
		defer cancel()
	}

	receipt, err := t.receipts.WaitReceipt(ctx, o.ChainID, o.Hash())
	if err == nil && receipt == nil {
		err = errors.New("no receipt returned")
	}
	if err != nil {
		t.metrics.TransferState(Failed.String())
		return t.report(o, o.fail(Failed, err))
	}

	o.mu.Lock()
	o.receipt = receipt
	o.mu.Unlock()
	if receipt.Status == types.ReceiptStatusFailed {
		t.metrics.TransferState(Failed.String())
		return t.report(o, o.fail(Failed, fmt.Errorf("%w: %s", ErrReverted, o.Hash().Hex())))
	}

	t.enter(o, Confirmed)
	zap.L().Debug("Transfer confirmed",
		zap.String("id", o.ID.String()),
		zap.String("txHash", o.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()))
	return nil
}

// Status reports whether any submission is awaiting its hash, and the
// error and hash of the latest attempt.
func (t *Transferer) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Status{
		Loading: t.inFlight.Load() > 0,
		Err:     t.lastErr,
		Hash:    t.lastHash,
	}
}

// enter moves o along an edge that is valid by construction.
func (t *Transferer) enter(o *Outcome, s State) {
	if err := o.transition(s); err != nil {
		zap.L().Error("Unexpected transfer state", zap.String("id", o.ID.String()), zap.Error(err))
		return
	}
	t.metrics.TransferState(s.String())
}

// report records err as the latest error, hands it to the error callback
// and returns it.
func (t *Transferer) report(o *Outcome, err error) error {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()

	category := errclass.Classify(err)
	t.metrics.Error(category.String())
	zap.L().Error("Transfer failed",
		zap.String("id", o.ID.String()),
		zap.String("state", o.State().String()),
		zap.String("category", category.String()),
		zap.Error(err))
	if t.onError != nil {
		t.onError(err)
	}
	return err
}
