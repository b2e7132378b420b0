package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGatewayCall("ETHEREUM", "getPool", "ok", time.Millisecond)
		m.RecordGatewayRetry("ETHEREUM")
		m.RecordSnapshot("ETHEREUM", "3", "ok", time.Millisecond)
		m.RecordRemoteRefresh("failed")
	})
}

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordGatewayCall("POLYGON", "getPool", "ok", 3*time.Millisecond)
	m.RecordGatewayCall("POLYGON", "getPool", "ok", 4*time.Millisecond)
	m.RecordRemoteRefresh("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("POLYGON", "getPool", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteRefreshes.WithLabelValues("failed")))
}
