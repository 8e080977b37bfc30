// Package metrics declares the Prometheus collectors of the buyback core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrackingRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_tracking_refresh_total",
		Help: "Tracking refreshes by outcome (changed, unchanged, error).",
	},
		[]string{"outcome"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_status_transitions_total",
		Help: "Committed order status changes by target status.",
	},
		[]string{"status"},
	)

	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_provider_calls_total",
		Help: "Carrier provider calls by provider, operation and result.",
	},
		[]string{"provider", "operation", "result"},
	)

	ProviderFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buyback_provider_fallbacks_total",
		Help: "Tracking calls retried against the fallback provider.",
	})

	VersionConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_version_conflicts_total",
		Help: "Optimistic commits that lost a race and were retried.",
	},
		[]string{"store"},
	)

	MirrorWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buyback_mirror_write_failures_total",
		Help: "Customer mirror writes that failed after the primary commit.",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_notifications_total",
		Help: "Notifications handed to the collaborator by kind and result.",
	},
		[]string{"kind", "result"},
	)

	SequencesIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buyback_sequences_issued_total",
		Help: "Sequence numbers issued by counter.",
	},
		[]string{"counter"},
	)
)
