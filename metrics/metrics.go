package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_shipments_created_total",
		Help: "Total number of shipments successfully created, by courier.",
	},
		[]string{"courier"},
	)

	ShipmentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_shipment_failures_total",
		Help: "Total number of failed shipment creation attempts, by courier.",
	},
		[]string{"courier"},
	)

	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhooks_received_total",
		Help: "Total number of carrier webhook deliveries received, by courier.",
	},
		[]string{"courier"},
	)

	WebhooksUnmatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_webhooks_unmatched_total",
		Help: "Total number of webhook deliveries that resolved to no known order.",
	})

	RateChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_rate_checks_total",
		Help: "Total number of shipping rate lookups relayed to a carrier.",
	})

	CSVOrdersProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_csv_orders_processed_total",
		Help: "Total number of orders emitted into bulk CSV exports.",
	})

	CSVOrdersSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_csv_orders_skipped_total",
		Help: "Total number of orders skipped during bulk CSV exports.",
	})
)
