// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clientdash"

// Metrics holds the dashboard's Prometheus collectors. It is a memo.Observer
// so every session cache reports into it.
type Metrics struct {
	Registry *prometheus.Registry

	cache    *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry. sessions reports
// the live session count.
func NewMetrics(sessions func() int) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Session cache lookups by operation and result.",
		}, []string{"op", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.Registry.MustRegister(m.cache, m.requests, m.latency)
	if sessions != nil {
		m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live dashboard sessions.",
		}, func() float64 { return float64(sessions()) }))
	}

	return m
}

func (m *Metrics) Hit(op string)     { m.cache.WithLabelValues(op, "hit").Inc() }
func (m *Metrics) Miss(op string)    { m.cache.WithLabelValues(op, "miss").Inc() }
func (m *Metrics) Failure(op string) { m.cache.WithLabelValues(op, "failure").Inc() }

func (m *Metrics) observe(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, statusLabel(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}
