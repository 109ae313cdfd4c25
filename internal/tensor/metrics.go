package tensor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics exports StackedMemoryPool activity. A nil *PoolMetrics is a
// valid no-op.
type PoolMetrics struct {
	takes       prometheus.Counter
	returns     prometheus.Counter
	grows       prometheus.Counter
	outstanding prometheus.Gauge
}

// NewPoolMetrics creates the pool collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	factory := promauto.With(reg)
	return &PoolMetrics{
		takes: factory.NewCounter(prometheus.CounterOpts{
			Name: "ndarray_pool_takes_total",
			Help: "Total number of slots taken from the stacked memory pool",
		}),
		returns: factory.NewCounter(prometheus.CounterOpts{
			Name: "ndarray_pool_returns_total",
			Help: "Total number of slots returned to the stacked memory pool",
		}),
		grows: factory.NewCounter(prometheus.CounterOpts{
			Name: "ndarray_pool_slots_allocated_total",
			Help: "Total number of slots allocated by pool growth",
		}),
		outstanding: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ndarray_pool_outstanding_slots",
			Help: "Current number of slots taken and not yet returned",
		}),
	}
}

func (m *PoolMetrics) took(outstanding int) {
	if m == nil {
		return
	}
	m.takes.Inc()
	m.outstanding.Set(float64(outstanding))
}

func (m *PoolMetrics) returned(outstanding int) {
	if m == nil {
		return
	}
	m.returns.Inc()
	m.outstanding.Set(float64(outstanding))
}

func (m *PoolMetrics) grew(n int) {
	if m == nil {
		return
	}
	m.grows.Add(float64(n))
}
