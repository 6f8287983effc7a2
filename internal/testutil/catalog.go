// Package testutil provides shared test helpers for the catalog packages.
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/logger"
)

// ObservationStart is the start time of the first image created by CreateImage.
var ObservationStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
}

// NewStore opens a migrated SQLite catalog in a temporary directory.
// The database is closed when the test ends.
func NewStore(t *testing.T) datastore.Manager {
	t.Helper()

	store, err := datastore.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"), datastore.Options{
		Logger: DiscardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// CreateDataset inserts a dataset and returns its id.
func CreateDataset(t *testing.T, store datastore.Manager) int64 {
	t.Helper()

	dataset := entities.Dataset{Description: t.Name(), ProcessStartTS: ObservationStart}
	require.NoError(t, store.DB().Create(&dataset).Error)
	return dataset.ID
}

// CreateBand inserts a frequency band around freq (Hz) and returns its id.
func CreateBand(t *testing.T, store datastore.Manager, freq float64) int64 {
	t.Helper()

	band := entities.FrequencyBand{FreqCentral: freq, FreqLow: freq - 1e6, FreqHigh: freq + 1e6}
	require.NoError(t, store.DB().Create(&band).Error)
	return band.ID
}

// CreateImage inserts an image of the dataset starting offset after
// ObservationStart and returns its id.
func CreateImage(t *testing.T, store datastore.Manager, datasetID, bandID int64, offset time.Duration) int64 {
	t.Helper()

	image := entities.Image{
		Dataset:    datasetID,
		Band:       bandID,
		Stokes:     1,
		TauTime:    300,
		FreqEff:    150e6,
		FreqBW:     2e6,
		TaustartTS: ObservationStart.Add(offset),
		RbSmaj:     0.01,
		RbSmin:     0.01,
		Deltax:     -0.001,
		Deltay:     0.001,
		XtrRadius:  1.5,
	}
	require.NoError(t, store.DB().Create(&image).Error)
	return image.ID
}
