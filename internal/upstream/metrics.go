package upstream

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts upstream traffic. A nil *Metrics is valid and records nothing.
type Metrics struct {
	calls     *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lastfm_dashboard",
				Subsystem: "upstream",
				Name:      "calls_total",
				Help:      "Last.fm API calls by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lastfm_dashboard",
				Subsystem: "upstream",
				Name:      "cache_hits_total",
				Help:      "Fetches answered from the memoization cache.",
			},
			[]string{"method"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lastfm_dashboard",
				Subsystem: "upstream",
				Name:      "call_duration_seconds",
				Help:      "Latency of Last.fm API calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.cacheHits, m.latency)
	}
	return m
}

func (m *Metrics) observe(method Method, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(string(method), outcome(err)).Inc()
	m.latency.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

func (m *Metrics) cacheHit(method Method) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(string(method)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Status == 429 {
			return "rate_limited"
		}
		return "http_error"
	}
	var ae *APIError
	if errors.As(err, &ae) {
		if ae.Code == 29 {
			return "rate_limited"
		}
		return "api_error"
	}
	return "transport_error"
}
