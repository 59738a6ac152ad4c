package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestDispatchSnapshot(t *testing.T) {
	m := NewMetrics()

	m.DispatchStarted()
	m.DispatchStarted()
	assert.Equal(t, int64(2), m.Snapshot().InFlight)

	m.DispatchFinished("CONFIG_GET", "success", time.Millisecond)
	m.DispatchFinished("DEAL_CREATE", "error", time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.InFlight)
	assert.Equal(t, int64(2), snap.Dispatched)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, float64(1), counterValue(t, m.Dispatches.WithLabelValues("DEAL_CREATE", "error")))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordGatewayStatus(401)
	assert.Equal(t, float64(1), counterValue(t, a.GatewayResponses.WithLabelValues("401")))
	assert.Equal(t, float64(0), counterValue(t, b.GatewayResponses.WithLabelValues("401")))
}
