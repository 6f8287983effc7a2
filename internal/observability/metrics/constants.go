// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Histogram bucket parameters
const (
	// BucketStart1ms is the first bucket for database latency histograms.
	BucketStart1ms = 0.001
	// BucketFactor2 doubles each bucket.
	BucketFactor2 = 2
	// BucketCount15 gives 1ms to ~16s.
	BucketCount15 = 15
)

// Status label values
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusInserted = "inserted"
	StatusDropped  = "dropped"
)

// Association outcome label values
const (
	OutcomeMatched       = "matched"
	OutcomeCreated       = "created"
	OutcomeForcedNull    = "forced_null"
	OutcomeForcedMonitor = "forced_monitor"
)

// ShutdownTimeout bounds graceful shutdown of the metrics HTTP endpoint.
const ShutdownTimeout = 5 * time.Second
