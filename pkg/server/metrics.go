/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus metrics for the irprobe HTTP service.
*/

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the service metrics
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	DecodedBits      prometheus.Histogram
	AnomaliesTotal   *prometheus.CounterVec
	ProntoTotal      *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "irprobe",
				Subsystem: "analysis",
				Name:      "total",
				Help:      "Total number of capture analyses by outcome",
			},
			[]string{"outcome"},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "irprobe",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Capture analysis duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),

		DecodedBits: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "irprobe",
				Subsystem: "analysis",
				Name:      "decoded_bits",
				Help:      "Number of bits recovered per successful analysis",
				Buckets:   []float64{8, 16, 24, 32, 48, 64, 128, 256},
			},
		),

		AnomaliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "irprobe",
				Subsystem: "decoder",
				Name:      "anomalies_total",
				Help:      "Total number of decoder anomalies by kind",
			},
			[]string{"kind"},
		),

		ProntoTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "irprobe",
				Subsystem: "pronto",
				Name:      "conversions_total",
				Help:      "Total number of Pronto conversions by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.AnalysesTotal, m.AnalysisDuration, m.DecodedBits, m.AnomaliesTotal, m.ProntoTotal)
	return m
}
