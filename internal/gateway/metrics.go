package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "loads_total",
			Help:      "Total model load attempts by outcome",
		},
		[]string{"outcome"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "generations_total",
			Help:      "Total generation sessions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	admissionWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "admission_wait_seconds",
			Help:      "Time spent waiting for an admission permit",
			Buckets:   prometheus.DefBuckets,
		},
	)

	permitsInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "permits_in_use",
			Help:      "Admission permits currently held by generation work",
		},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, generationsTotal, admissionWaitSeconds, permitsInUse)
}
