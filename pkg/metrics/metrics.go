// Package metrics instruments balance queries, transfers and classified
// errors with Prometheus collectors. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "c13"

// Metrics holds the SDK collectors.
type Metrics struct {
	// BalanceQueries counts balance reads by path (native, contract) and
	// result (ok, error, stale).
	BalanceQueries *prometheus.CounterVec
	// Transfers counts transfer attempts reaching each state.
	Transfers *prometheus.CounterVec
	// Errors counts classified errors by category.
	Errors *prometheus.CounterVec
	// TransfersInFlight is the number of transfers awaiting a hash.
	TransfersInFlight prometheus.Gauge
	// RPCLatency tracks chain call latency by chain and method.
	RPCLatency *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		BalanceQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_queries_total",
				Help:      "Total number of balance queries",
			},
			[]string{"path", "result"},
		),
		Transfers: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer attempts per reached state",
			},
			[]string{"state"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of classified errors",
			},
			[]string{"category"},
		),
		TransfersInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "transfers_in_flight",
				Help:      "Transfers submitted to the connector and awaiting a transaction hash",
			},
		),
		RPCLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "Chain call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"chain", "method"},
		),
	}
}

func (m *Metrics) BalanceQuery(path, result string) {
	if m == nil {
		return
	}
	m.BalanceQueries.WithLabelValues(path, result).Inc()
}

func (m *Metrics) TransferState(state string) {
	if m == nil {
		return
	}
	m.Transfers.WithLabelValues(state).Inc()
}

func (m *Metrics) Error(category string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(category).Inc()
}

// InFlight adds delta to the in-flight gauge.
func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.TransfersInFlight.Add(delta)
}

// ObserveRPC records the latency of a chain call started at start.
func (m *Metrics) ObserveRPC(chainID uint64, method string, start time.Time) {
	if m == nil {
		return
	}
	m.RPCLatency.WithLabelValues(strconv.FormatUint(chainID, 10), method).Observe(time.Since(start).Seconds())
}
