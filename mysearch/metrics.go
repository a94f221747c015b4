package mysearch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - счетчики поиска. Нулевой указатель допустим: тогда ничего не пишется.
type Metrics struct {
	Probes         prometheus.Counter
	Distinguished  prometheus.Counter
	Exhausted      prometheus.Counter
	Steps          prometheus.Counter
	FalsePositives prometheus.Counter
	Collisions     prometheus.Counter
	Satisfied      prometheus.Counter
	Embedding      prometheus.Gauge
	ChainLength    prometheus.Histogram
}

// NewMetrics регистрирует счетчики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Probes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "probes_total",
			Help: "Random seeds drawn.",
		}),
		Distinguished: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "distinguished_points_total",
			Help: "Chains that reached a distinguished point.",
		}),
		Exhausted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "chains_exhausted_total",
			Help: "Chains discarded after 3*2^theta steps.",
		}),
		Steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "steps_total",
			Help: "Evaluations of f or g during chain generation.",
		}),
		FalsePositives: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "false_positives_total",
			Help: "Dictionary candidates rejected by the walker.",
		}),
		Collisions: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "collisions_total",
			Help: "Distinct collisions recovered by the walker.",
		}),
		Satisfied: f.NewCounter(prometheus.CounterOpts{
			Namespace: "collsearch", Name: "satisfied_collisions_total",
			Help: "Collisions accepted by the problem filters.",
		}),
		Embedding: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "collsearch", Name: "embedding",
			Help: "Current embedding parameter.",
		}),
		ChainLength: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collsearch", Name: "chain_length",
			Help:    "Length of chains ending in a distinguished point.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}
}

func (m *Metrics) probe(steps int, ok bool) {
	if m == nil {
		return
	}
	m.Probes.Inc()
	m.Steps.Add(float64(steps))
	if ok {
		m.Distinguished.Inc()
		m.ChainLength.Observe(float64(steps))
	} else {
		m.Exhausted.Inc()
	}
}

func (m *Metrics) falsePositive() {
	if m != nil {
		m.FalsePositives.Inc()
	}
}

func (m *Metrics) collision(satisfied bool, embedding uint64) {
	if m == nil {
		return
	}
	m.Collisions.Inc()
	if satisfied {
		m.Satisfied.Inc()
	}
	m.Embedding.Set(float64(embedding))
}
