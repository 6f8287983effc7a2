package repository

import (
	"context"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
)

// FrequencyBandRepository manages observing bands.
type FrequencyBandRepository interface {
	// FindContaining returns the lowest-id band containing freq, or
	// ErrFrequencyBandNotFound.
	FindContaining(ctx context.Context, freq float64) (*entities.FrequencyBand, error)
	// GetOrCreate returns the band containing freqEff, creating one centred
	// on freqEff with width bandwidth when none exists.
	GetOrCreate(ctx context.Context, freqEff, bandwidth float64) (*entities.FrequencyBand, error)
}
