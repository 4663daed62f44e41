package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mergeAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "realtime",
		Name:      "merge_applied_total",
		Help:      "Push inserts applied to the entry log.",
	})

	mergeDedupTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "realtime",
		Name:      "merge_dedup_total",
		Help:      "Push inserts dropped because the id was already present.",
	})

	mergeSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "realtime",
		Name:      "merge_skipped_pending_total",
		Help:      "Push inserts skipped because a local confirm owned the id.",
	})

	reconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "realtime",
		Name:      "reconnects_total",
		Help:      "Push channel reconnect attempts.",
	})
)
