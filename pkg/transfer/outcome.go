package transfer

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/c13studio/c13-sdk/pkg/tokens"
)

// State is the stage a transfer attempt has reached.
type State int

const (
	Idle State = iota
	Validating
	Rejected
	Submitting
	Submitted
	Confirming
	Confirmed
	Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Validating: "validating",
	Rejected:   "rejected",
	Submitting: "submitting",
	Submitted:  "submitted",
	Confirming: "confirming",
	Confirmed:  "confirmed",
	Failed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == Rejected || s == Confirmed || s == Failed
}

var transitions = map[State][]State{
	Idle:       {Validating},
	Validating: {Rejected, Submitting},
	Submitting: {Submitted, Failed},
	Submitted:  {Confirming},
	Confirming: {Confirmed, Failed},
}

// ErrInvalidTransition is returned when an outcome is moved along an edge
// the state machine does not have.
var ErrInvalidTransition = errors.New("invalid transfer state transition")

// Outcome tracks one transfer attempt. Only the Transferer mutates it;
// callers read it through the accessors, which are safe for concurrent use.
type Outcome struct {
	ID      uuid.UUID
	Request Request
	ChainID uint64
	Created time.Time

	mu      sync.RWMutex
	state   State
	token   tokens.Token
	value   *big.Int
	hash    common.Hash
	err     error
	receipt *types.Receipt
}

func newOutcome(req Request) *Outcome {
	return &Outcome{
		ID:      uuid.New(),
		Request: req,
		Created: time.Now(),
	}
}

func (o *Outcome) transition(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, next := range transitions[o.state] {
		if next == to {
			o.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.state, to)
}

// fail moves o to the given terminal state and records err.
func (o *Outcome) fail(to State, err error) error {
	if terr := o.transition(to); terr != nil {
		return terr
	}
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
	return err
}

func (o *Outcome) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Token is the resolved token, zero until validation has passed.
func (o *Outcome) Token() tokens.Token {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.token
}

// Value is the amount in the token's smallest unit, nil until validation
// has passed.
func (o *Outcome) Value() *big.Int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.value == nil {
		return nil
	}
	return new(big.Int).Set(o.value)
}

// Hash is the transaction hash, zero until the connector has produced one.
func (o *Outcome) Hash() common.Hash {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.hash
}

func (o *Outcome) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// Receipt is set once the transaction is confirmed or has reverted.
func (o *Outcome) Receipt() *types.Receipt {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.receipt
}
