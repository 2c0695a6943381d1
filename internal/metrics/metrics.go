// Package metrics registers the prometheus instruments shared across the
// pipeline, alert store, and distributor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsTotal counts every record the pipeline processed, by protocol.
	PacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netsentra_packets_total",
		Help: "Total packet records processed, by protocol.",
	}, []string{"protocol"})

	// RecordErrors counts malformed records skipped by the pipeline.
	RecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netsentra_record_errors_total",
		Help: "Total malformed records skipped by the ingestion pipeline.",
	})

	// CaptureRetries counts transient capture read failures.
	CaptureRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netsentra_capture_retries_total",
		Help: "Total transient capture failures retried on the next loop iteration.",
	})

	// AlertsTotal counts alerts produced, by severity and threat type.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netsentra_alerts_total",
		Help: "Total alerts produced, by severity and threat type.",
	}, []string{"severity", "threat"})

	// AlertsEvicted counts alerts dropped from the store once it is full.
	AlertsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netsentra_alerts_evicted_total",
		Help: "Total alerts evicted from the bounded alert log.",
	})

	// SubscriberDropped counts alerts dropped per subscriber on a full queue.
	SubscriberDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netsentra_subscriber_dropped_total",
		Help: "Total alerts dropped per subscriber due to a full outbound queue.",
	}, []string{"subscriber"})

	// ActiveSources tracks how many distinct source addresses are in state.
	ActiveSources = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netsentra_active_sources",
		Help: "Distinct source addresses currently tracked.",
	})
)
