package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	broadcastRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_pool_broadcast_rounds_total",
		Help: "Dispatch rounds per broadcast kind, retries included",
	}, []string{"kind"})

	duplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_pool_duplicate_deliveries_total",
		Help: "Broadcast copies a worker had already applied",
	}, []string{"kind"})

	scoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordle_pool_score_duration_seconds",
		Help:    "Wall time of one scoring round",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
