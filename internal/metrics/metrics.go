// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HydrationRecords counts trueke records leaving the hydrator, by outcome
	// (hydrated or dropped).
	HydrationRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truekeo",
		Name:      "hydration_records_total",
		Help:      "Trueke records processed by the hydrator, by outcome.",
	}, []string{"outcome"})

	// HydrationLookups counts reference lookups issued during hydration, by
	// kind (user or item) and result (hit or miss against the batch cache).
	HydrationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "truekeo",
		Name:      "hydration_lookups_total",
		Help:      "Reference lookups during hydration, by kind and cache result.",
	}, []string{"kind", "result"})

	// MessagesSent counts chat messages accepted by the API.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truekeo",
		Name:      "chat_messages_sent_total",
		Help:      "Chat messages accepted by the API.",
	})
)
