// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelops_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuelops_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	LitresDispensed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelops_litres_dispensed_total",
		Help: "Litres taken out of tanks by readings and direct sales",
	}, []string{"source"})

	LitresUnloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuelops_litres_unloaded_total",
		Help: "Litres added to tanks by unloaded purchases",
	})

	InventoryRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelops_inventory_rejections_total",
		Help: "Tank movements refused by the inventory guard",
	}, []string{"reason"})

	CreditAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelops_credit_amount_total",
		Help: "Credit amounts extended and settled",
	}, []string{"event"})
)
