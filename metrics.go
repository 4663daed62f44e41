package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spacedrop/spacedrop/client/internal/job"
)

var (
	postsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spacedrop_client",
			Name:      "posts_enqueued_total",
			Help:      "Submissions accepted into the shard executor.",
		},
		[]string{"shard"},
	)

	postsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spacedrop_client",
			Name:      "posts_enqueue_failures_total",
			Help:      "Submissions rejected before their job could be enqueued.",
		},
		[]string{"shard"},
	)
)

// shardLabelFor keeps metric cardinality small even when a submission fails
// before a placeholder id exists.
func shardLabelFor(placeholderID, spaceID string) string {
	if placeholderID == "" {
		return job.ShardLabel(spaceID)
	}
	return job.ShardLabel(placeholderID)
}
