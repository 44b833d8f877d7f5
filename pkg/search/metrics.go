package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "search",
		Name:      "queries_total",
		Help:      "Total search queries accepted past the input gate",
	})

	searchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "search",
		Name:      "fallbacks_total",
		Help:      "Total queries served by the pattern-scan fallback",
	})

	searchRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "search",
		Name:      "rejections_total",
		Help:      "Total queries rejected as suspicious input",
	})
)
