package sdk

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/c13studio/c13-sdk/pkg/chains"
)

// ChainHealth is the result of one chain heartbeat.
type ChainHealth struct {
	ChainID uint64        `json:"chain_id"`
	Name    string        `json:"name"`
	Block   uint64        `json:"block,omitempty"`
	Latency time.Duration `json:"latency"`
	Err     error         `json:"-"`
}

// Healthy reports whether the chain answered.
func (h ChainHealth) Healthy() bool { return h.Err == nil }

// Heartbeat asks every configured chain for its latest block, each under
// the chain read timeout. Chains are reported in Config.ChainIDs order.
func (c *Core) Heartbeat(ctx context.Context) []ChainHealth {
	ids := c.ChainIDs()
	out := make([]ChainHealth, 0, len(ids))
	for _, id := range ids {
		h := ChainHealth{ChainID: id}
		if ch, err := chains.ByID(id); err == nil {
			h.Name = ch.Name
		}

		cl, err := c.conn.Client(id)
		if err != nil {
			h.Err = err
			out = append(out, h)
			continue
		}
		hctx, cancel := context.WithTimeout(ctx, c.Timeouts.ChainRead)
		start := time.Now()
		block, err := cl.GetCurrentBlockNumberCtx(hctx)
		h.Latency = time.Since(start)
		cancel()
		c.metrics.ObserveRPC(id, "eth_blockNumber", start)

		if err != nil {
			h.Err = err
			zap.L().Warn("heartbeat failed", zap.Uint64("chainID", id), zap.Error(err))
		} else {
			h.Block = block.Uint64()
		}
		if c.Debug {
			zap.L().Debug("heartbeat", zap.Uint64("chainID", id), zap.Duration("latency", h.Latency))
		}
		out = append(out, h)
	}
	return out
}
