package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_runs_total",
			Help: "Total number of workflow runs by outcome",
		},
		[]string{"outcome"},
	)

	BuildsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_builds_failed_total",
			Help: "Total number of failed build calls by error kind and partial flag",
		},
		[]string{"error_kind", "partial"},
	)

	ConfirmationWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "factory_confirmation_wait_seconds",
			Help:    "Time spent waiting for a build transaction to reach the configured depth",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	AddressLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_address_lookups_total",
			Help: "Total number of deterministic address lookups by result",
		},
		[]string{"result"},
	)

	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_verifications_total",
			Help: "Total number of verification submissions by entity type and result",
		},
		[]string{"entity_type", "result"},
	)
)
