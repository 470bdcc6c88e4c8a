package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesExpanded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordle_search_nodes_expanded_total",
		Help: "Search nodes whose guesses were scored",
	})

	memoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_search_memo_lookups_total",
		Help: "Memo lookups by result",
	}, []string{"result"})

	memoHits   = memoLookups.WithLabelValues("hit")
	memoMisses = memoLookups.WithLabelValues("miss")

	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_search_decisions_total",
		Help: "Root decisions by how they were reached",
	}, []string{"kind"})
)
