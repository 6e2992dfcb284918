package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lastfm_dashboard",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Served HTTP requests by endpoint and status code.",
			},
			[]string{"endpoint", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lastfm_dashboard",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Time spent serving HTTP requests.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument tags the request with an ID and a request-scoped logger, and
// records the outcome under endpoint.
func (s *Server) instrument(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		log := s.logger.With().Str("request_id", id).Str("endpoint", endpoint).Logger()
		r = r.WithContext(log.WithContext(r.Context()))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)

		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(wrapped.statusCode)).Inc()
		s.metrics.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

		ev := log.Debug()
		if wrapped.statusCode >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", r.Method).
			Str("query", r.URL.RawQuery).
			Int("status", wrapped.statusCode).
			Dur("elapsed", elapsed).
			Msg("served request")
	}
}

// requestLogger returns the logger attached by instrument.
func requestLogger(r *http.Request) zerolog.Logger {
	return *zerolog.Ctx(r.Context())
}
