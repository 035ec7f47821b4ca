package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitRatio tracks the hit ratio of each in-process cache
	CacheHitRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "betmind_cache_hit_ratio",
			Help: "In-process cache hit ratio",
		},
		[]string{"cache"},
	)
)
