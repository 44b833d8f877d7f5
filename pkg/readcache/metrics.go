package readcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "readcache",
		Name:      "hits_total",
		Help:      "Total cache lookups served from a live entry",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "readcache",
		Name:      "misses_total",
		Help:      "Total cache lookups that fell through to the store",
	})

	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "readcache",
		Name:      "invalidations_total",
		Help:      "Total explicit invalidations, including full clears",
	})

	cacheSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lantern",
		Subsystem: "readcache",
		Name:      "swept_entries_total",
		Help:      "Total expired entries removed by sweeps",
	})
)
