// Package metrics holds the prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rotation results.
const (
	RotationOK      = "ok"
	RotationInvalid = "invalid"
	RotationExpired = "expired"
	RotationReuse   = "reuse"
)

// Revocation reasons.
const (
	RevokeReuse   = "reuse"
	RevokeExpired = "expired"
	RevokeLogout  = "logout"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Rotations       *prometheus.CounterVec
	Revocations     *prometheus.CounterVec
}

// New builds the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		Rotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refresh_token_rotations_total",
				Help: "Refresh token rotation attempts by result.",
			},
			[]string{"result"},
		),
		Revocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refresh_token_revocations_total",
				Help: "Refresh tokens revoked outside of normal rotation, by reason.",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.RequestCount, m.RequestDuration, m.Rotations, m.Revocations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Rotation counts one rotate attempt. Safe on a nil receiver.
func (m *Metrics) Rotation(result string) {
	if m == nil {
		return
	}
	m.Rotations.WithLabelValues(result).Inc()
}

// Revoked counts n revoked tokens. Safe on a nil receiver.
func (m *Metrics) Revoked(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Revocations.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
