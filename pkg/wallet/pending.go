package wallet

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Pending is the future result of a submission: a transaction hash or an
// error. It completes exactly once.
type Pending struct {
	done chan struct{}
	once sync.Once
	hash common.Hash
	err  error
}

// NewPending returns an unresolved Pending.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolved returns a Pending already completed with hash.
func Resolved(hash common.Hash) *Pending {
	p := NewPending()
	p.Resolve(hash)
	return p
}

// Failed returns a Pending already completed with err.
func Failed(err error) *Pending {
	p := NewPending()
	p.Reject(err)
	return p
}

// Resolve completes p with hash. Later calls are ignored.
func (p *Pending) Resolve(hash common.Hash) {
	p.once.Do(func() {
		p.hash = hash
		close(p.done)
	})
}

// Reject completes p with err. Later calls are ignored.
func (p *Pending) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once p has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until p completes or ctx is done, whichever comes first.
// Cancelling ctx abandons the wait only; the submission itself is owned
// by the connector.
func (p *Pending) Wait(ctx context.Context) (common.Hash, error) {
	select {
	case <-p.done:
		return p.hash, p.err
	case <-ctx.Done():
		return common.Hash{}, ctx.Err()
	}
}
