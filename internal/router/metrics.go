package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csvask",
		Subsystem: "router",
		Name:      "decisions_total",
		Help:      "Routing decisions by strategy and tool",
	}, []string{"strategy", "tool"})

	classifierFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csvask",
		Subsystem: "router",
		Name:      "classifier_failures_total",
		Help:      "Classifier calls that fell back to the default tool, by reason",
	}, []string{"reason"})

	classifierLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "csvask",
		Subsystem: "router",
		Name:      "classifier_latency_seconds",
		Help:      "Latency of remote classification calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)
