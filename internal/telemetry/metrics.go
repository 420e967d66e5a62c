// Package telemetry registers application-level Prometheus metrics.
//
// Metrics are registered against the default registry via promauto, so any
// process that mounts promhttp.Handler picks them up without extra wiring.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrgCacheHitsTotal counts organization cache lookups that were served
	// from memory without touching storage.
	OrgCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "org_cache_hits_total",
			Help: "Organization cache hits.",
		},
	)

	// OrgCacheMissesTotal counts organization cache lookups that fell
	// through to storage (or to a sentinel).
	OrgCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "org_cache_misses_total",
			Help: "Organization cache misses.",
		},
	)

	// CascadeFailuresTotal counts best-effort grant-revocation steps that
	// failed during membership cascade cleanup, labelled by grant kind.
	CascadeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "org_membership_cascade_failures_total",
			Help: "Failed grant revocations during membership cascade cleanup.",
		},
		[]string{"grant"},
	)
)
