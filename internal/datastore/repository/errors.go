package repository

import "github.com/transientskp/tkpcat/internal/errors"

// Sentinel errors for repository operations.
// These typed errors enable callers to distinguish between different
// failure modes without relying on string matching or GORM-specific errors.
var (
	// ErrDatasetNotFound indicates the requested dataset does not exist.
	ErrDatasetNotFound = errors.NewStd("dataset not found")

	// ErrImageNotFound indicates the requested image does not exist.
	ErrImageNotFound = errors.NewStd("image not found")

	// ErrRunningCatalogNotFound indicates the requested running-catalog source does not exist.
	ErrRunningCatalogNotFound = errors.NewStd("running catalog source not found")

	// ErrMonitorNotFound indicates the requested monitor position does not exist.
	ErrMonitorNotFound = errors.NewStd("monitor not found")

	// ErrFrequencyBandNotFound indicates no band contains the frequency.
	ErrFrequencyBandNotFound = errors.NewStd("frequency band not found")
)
