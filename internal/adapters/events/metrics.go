package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school_profile",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events handed to a sink, by event type, sink and outcome.",
	}, []string{"event_type", "sink", "outcome"})

	eventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school_profile",
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Inbound events by event type and outcome.",
	}, []string{"event_type", "outcome"})

	outboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "school_profile",
		Subsystem: "outbox",
		Name:      "pending_rows",
		Help:      "Unpublished outbox rows seen by the last relay pass.",
	})

	outboxPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "school_profile",
		Subsystem: "outbox",
		Name:      "purged_total",
		Help:      "Published outbox rows deleted by retention.",
	})
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
