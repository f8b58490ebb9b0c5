package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry   *prometheus.Registry
	translated *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		translated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldshift",
			Name:      "chunks_translated_total",
			Help:      "Chunks translated, by direction and result.",
		}, []string{"direction", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldshift",
			Name:      "translate_seconds",
			Help:      "Time spent translating one chunk.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"direction"}),
	}
	m.registry.MustRegister(m.translated, m.duration)
	return m
}

func (m *metrics) observe(direction string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.translated.WithLabelValues(direction, result).Inc()
	m.duration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
