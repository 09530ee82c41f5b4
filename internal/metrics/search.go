package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchStageTotal counts which stage contributed results per query:
	// exact, vector, or fallback.
	SearchStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appdex",
			Name:      "search_stage_total",
			Help:      "Search queries by contributing stage",
		},
		[]string{"stage"},
	)

	// SearchCacheTotal counts query-cache hits and misses.
	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appdex",
			Name:      "search_cache_total",
			Help:      "Query cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// SuggestTotal counts suggestion queries by the policy branch taken.
	SuggestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appdex",
			Name:      "suggest_total",
			Help:      "Suggestion queries by policy branch",
		},
		[]string{"branch"},
	)
)

// RegisterSearchMetrics registers the search counters. Called explicitly
// from the composition root (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchStageTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SuggestTotal)
}
