package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ChestCreated()
	m.ChestCreated()
	m.Transition("active", "unlockable")
	m.ChitAdded("happy")
	m.Rejected("chest_already_active")
	m.Rejected("")
	m.Swept(3)
	m.ObserveRPC("/chitchest.v1.ChestService/AddChit", "OK", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChestsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChestTransitions.WithLabelValues("active", "unlockable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChitsAdded.WithLabelValues("happy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("chest_already_active")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SweepPromoted))
	require.Equal(t, 1, testutil.CollectAndCount(m.RPCDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PairingCommitted()
		m.ChestCreated()
		m.Transition("a", "b")
		m.ChitAdded("sad")
		m.ChitRead()
		m.Rejected("x")
		m.Swept(1)
		m.ObserveRPC("m", "OK", time.Second)
	})
}
