package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LeadsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Leads created, labelled by source",
		},
		[]string{"source"},
	)

	LeadStageMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_stage_moves_total",
			Help: "Pipeline stage transitions, labelled by target stage",
		},
		[]string{"stage"},
	)

	AlertDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_alert_dispatch_total",
			Help: "New-lead alert webhook dispatches by result",
		},
		[]string{"result"},
	)
)
