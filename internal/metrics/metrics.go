// Package metrics defines the Prometheus collectors for the video library
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VideosAdded counts video entries admitted into module state, by origin.
	VideosAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videolib_videos_added_total",
		Help: "Video entries admitted into module state, by origin.",
	}, []string{"origin"})

	// VideosRemoved counts video entries removed from module state.
	VideosRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videolib_videos_removed_total",
		Help: "Video entries removed from module state.",
	})

	// QuotaRejections counts operations rejected by a per-module cap.
	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videolib_quota_rejections_total",
		Help: "Operations rejected by a per-module quota, by quota kind.",
	}, []string{"quota"})

	// DuplicateRejections counts user additions rejected as duplicates.
	DuplicateRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videolib_duplicate_rejections_total",
		Help: "User video additions rejected because the URL was already present.",
	})

	// AICandidatesSkipped counts AI candidates dropped during filtering.
	AICandidatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videolib_ai_candidates_skipped_total",
		Help: "AI candidates dropped as duplicates or structurally invalid.",
	})

	// ProbeDuration observes embed probe latency.
	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "videolib_probe_duration_seconds",
		Help:    "Latency of embed availability probes.",
		Buckets: prometheus.DefBuckets,
	})

	// ProbeFailures counts probes that resolved to unavailable.
	ProbeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videolib_probe_failures_total",
		Help: "Embed probes that resolved to unavailable (network error or non-success status).",
	})

	// PersistenceFailures counts failed write-backs of module state.
	PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videolib_persistence_failures_total",
		Help: "Failed write-backs of merged user video maps.",
	})
)
