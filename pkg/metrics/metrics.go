package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MediaUploads counts upload attempts by kind (avatar, cover) and outcome
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// MediaDerivationSeconds tracks time spent producing one variant
	MediaDerivationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_derivation_seconds",
			Help:    "Time to decode, resize and encode one image variant",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	// MediaOrphansSwept counts derived files removed by the orphan sweep
	MediaOrphansSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_orphans_swept_total",
			Help: "Derived media files removed because no profile references them",
		},
	)

	// CacheLookups counts cache lookups by cache name and result (hit, miss)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)
)
