package hook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refguard",
		Name:      "decision_total",
		Help:      "Total number of ref update decisions",
	},
		[]string{"namespace", "kind", "result"})

	evaluateSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "refguard",
		Name:      "evaluate_duration_seconds",
		Help:      "The latency distributions of policy evaluations",
		// lowest bucket start of upper bound 0.001 sec (1ms) with factor 2
		// highest bucket start of 0.001 sec * 2^11 = 2.048 sec
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)
