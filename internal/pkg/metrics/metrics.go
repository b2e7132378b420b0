package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method then does nothing.
type Metrics struct {
	gatewayCalls        *prometheus.CounterVec
	gatewayCallDuration *prometheus.HistogramVec
	gatewayRetries      *prometheus.CounterVec
	snapshots           *prometheus.CounterVec
	snapshotDuration    prometheus.Histogram
	remoteRefreshes     *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aave_gateway_calls_total",
				Help: "Total number of contract calls issued by the protocol gateway",
			},
			[]string{"chain", "method", "outcome"},
		),
		gatewayCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aave_gateway_call_duration_milliseconds",
				Help:    "Contract call duration in milliseconds, retries included",
				Buckets: prometheus.ExponentialBuckets(5, 2, 12),
			},
			[]string{"chain", "method"},
		),
		gatewayRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aave_gateway_retries_total",
				Help: "Total number of retried or failed-over contract call attempts",
			},
			[]string{"chain"},
		),
		snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aave_snapshots_total",
				Help: "Total number of account snapshots computed",
			},
			[]string{"chain", "version", "outcome"},
		),
		snapshotDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aave_snapshot_duration_milliseconds",
				Help:    "Account snapshot duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
		),
		remoteRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aave_rpc_remote_refresh_total",
				Help: "Total number of remote RPC override refreshes",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordGatewayCall(chain, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(chain, method, outcome).Inc()
	m.gatewayCallDuration.WithLabelValues(chain, method).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) RecordGatewayRetry(chain string) {
	if m == nil {
		return
	}
	m.gatewayRetries.WithLabelValues(chain).Inc()
}

func (m *Metrics) RecordSnapshot(chain, version, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(chain, version, outcome).Inc()
	m.snapshotDuration.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) RecordRemoteRefresh(outcome string) {
	if m == nil {
		return
	}
	m.remoteRefreshes.WithLabelValues(outcome).Inc()
}
