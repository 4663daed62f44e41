package compose

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	placeholdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "compose",
		Name:      "placeholders_created_total",
		Help:      "Optimistic placeholders appended to the entry log.",
	})

	placeholdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "compose",
		Name:      "placeholders_confirmed_total",
		Help:      "Placeholders replaced by gateway-confirmed entries.",
	})

	placeholdersFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacedrop_client",
		Subsystem: "compose",
		Name:      "placeholders_failed_total",
		Help:      "Placeholders marked failed and scheduled for removal.",
	})
)
