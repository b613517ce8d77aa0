package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ridehail",
		Name:      "matches_total",
		Help:      "Total number of successful driver assignments",
	})

	NoDriversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ridehail",
		Name:      "no_drivers_total",
		Help:      "Total number of ride requests that found no driver",
	})

	MatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ridehail",
		Name:      "match_latency_seconds",
		Help:      "Time taken to match a ride request to a driver",
		Buckets:   prometheus.DefBuckets,
	})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridehail",
		Name:      "events_consumed_total",
		Help:      "Ride request events consumed, by outcome",
	}, []string{"outcome"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridehail",
		Name:      "notifications_sent_total",
		Help:      "Notifications delivered, by channel",
	}, []string{"channel"})

	RetentionRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridehail",
		Name:      "retention_rows_total",
		Help:      "Rows archived or deleted by the retention job, by kind",
	}, []string{"kind"})
)
