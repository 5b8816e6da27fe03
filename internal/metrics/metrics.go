package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DeliveryLogsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmgw_delivery_logs_total",
			Help: "Communication log lifecycle counter by status",
		},
		[]string{"status"}, // pending|sent|failed
	)

	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmgw_rule_translations_total",
			Help: "Rule-to-query translations by outcome",
		},
		[]string{"outcome"}, // ok|error
	)

	VendorSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmgw_vendor_sends_total",
			Help: "Vendor send attempts by outcome",
		},
		[]string{"outcome"}, // ok|error
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crmgw_campaign_dispatch_seconds",
			Help:    "Wall time of the per-campaign dispatch loop",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		DeliveryLogsTotal,
		TranslationsTotal,
		VendorSendsTotal,
		DispatchDuration,
	)
}
