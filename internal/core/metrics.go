package core

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments the register. All methods are nil-receiver safe so the
// store can run uninstrumented.
type Metrics struct {
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	loadRecoveries  *prometheus.CounterVec
	rosterSize      prometheus.Gauge
	bucketCount     prometheus.Gauge
}

// NewMetrics builds the register collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollbook",
			Name:      "mutations_total",
			Help:      "Completed register mutations by operation.",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rollbook",
			Name:      "persist_failures_total",
			Help:      "Write-through persistence attempts that failed.",
		}),
		loadRecoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollbook",
			Name:      "load_recoveries_total",
			Help:      "Tables reset to empty at load time because the stored blob was unreadable.",
		}, []string{"table"}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rollbook",
			Name:      "roster_size",
			Help:      "Current number of students in the roster.",
		}),
		bucketCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rollbook",
			Name:      "materialized_dates",
			Help:      "Number of date buckets materialized so far.",
		}),
	}
	reg.MustRegister(m.mutations, m.persistFailures, m.loadRecoveries, m.rosterSize, m.bucketCount)
	return m
}

func (m *Metrics) mutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) persistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) loadRecovery(table string) {
	if m == nil {
		return
	}
	m.loadRecoveries.WithLabelValues(table).Inc()
}

func (m *Metrics) observeSizes(students, buckets int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(students))
	m.bucketCount.Set(float64(buckets))
}
