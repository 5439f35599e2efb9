// Package metrics exposes the Prometheus collectors of the chest service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PairingsCommitted prometheus.Counter
	ChestsCreated     prometheus.Counter
	ChestTransitions  *prometheus.CounterVec
	ChitsAdded        *prometheus.CounterVec
	ChitsRead         prometheus.Counter
	Rejections        *prometheus.CounterVec
	SweepPromoted     prometheus.Counter
	RPCDuration       *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PairingsCommitted: f.NewCounter(prometheus.CounterOpts{
			Name: "chitchest_pairings_committed_total",
			Help: "Total number of pairings committed on both identities",
		}),
		ChestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "chitchest_chests_created_total",
			Help: "Total number of chests created",
		}),
		ChestTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chitchest_chest_transitions_total",
			Help: "Chest status transitions by source and target status",
		}, []string{"from", "to"}),
		ChitsAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chitchest_chits_added_total",
			Help: "Chits written by emotion",
		}, []string{"emotion"}),
		ChitsRead: f.NewCounter(prometheus.CounterOpts{
			Name: "chitchest_chits_read_total",
			Help: "Chits flipped to read for the first time",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chitchest_rejections_total",
			Help: "Operations rejected by a domain rule, by error code",
		}, []string{"code"}),
		SweepPromoted: f.NewCounter(prometheus.CounterOpts{
			Name: "chitchest_sweep_promoted_total",
			Help: "Chests promoted to unlockable by the background sweep",
		}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chitchest_rpc_duration_seconds",
			Help:    "gRPC handler latency by method and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
}

// All recorders are no-ops on a nil *Metrics.

func (m *Metrics) PairingCommitted() {
	if m == nil {
		return
	}
	m.PairingsCommitted.Inc()
}

func (m *Metrics) ChestCreated() {
	if m == nil {
		return
	}
	m.ChestsCreated.Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.ChestTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ChitAdded(emotion string) {
	if m == nil {
		return
	}
	m.ChitsAdded.WithLabelValues(emotion).Inc()
}

func (m *Metrics) ChitRead() {
	if m == nil {
		return
	}
	m.ChitsRead.Inc()
}

func (m *Metrics) Rejected(code string) {
	if m == nil || code == "" {
		return
	}
	m.Rejections.WithLabelValues(code).Inc()
}

func (m *Metrics) Swept(n int) {
	if m == nil {
		return
	}
	m.SweepPromoted.Add(float64(n))
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
