package cache

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	lookups   *prometheus.CounterVec
	evictions *prometheus.CounterVec
	entries   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, name string) *Metrics {
	labels := prometheus.Labels{"cache": name}

	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cache_lookups_total",
			Help:        "Cache lookups by result",
			ConstLabels: labels,
		}, []string{"result"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cache_evictions_total",
			Help:        "Entries removed by expiry or invalidation, or fills dropped as stale",
			ConstLabels: labels,
		}, []string{"reason"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cache_entries",
			Help:        "Entries currently held",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(m.lookups, m.evictions, m.entries)
	return m
}

// nil-safe so an unmetered cache needs no branches at call sites

func (m *Metrics) hit() {
	if m != nil {
		m.lookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.lookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) expired() {
	if m != nil {
		m.evictions.WithLabelValues("expired").Inc()
	}
}

func (m *Metrics) invalidated(n int) {
	if m != nil && n > 0 {
		m.evictions.WithLabelValues("invalidated").Add(float64(n))
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.evictions.WithLabelValues("stale_fill").Inc()
	}
}

func (m *Metrics) size(n int) {
	if m != nil {
		m.entries.Set(float64(n))
	}
}
