// Package lightcurve reads the flux history of running-catalog sources.
package lightcurve

import (
	"context"
	"time"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
)

// Point is one flux measurement of a light curve.
type Point struct {
	ObservationStart time.Time `json:"observation_start" yaml:"observation_start"`
	IntegrationTime  float64   `json:"integration_time" yaml:"integration_time"` // seconds
	IntFlux          float64   `json:"f_int" yaml:"f_int"`                       // Jy
	IntFluxErr       float64   `json:"f_int_err" yaml:"f_int_err"`
	SourceID         int64     `json:"xtrsrc" yaml:"xtrsrc"`
	BandID           int64     `json:"band" yaml:"band"`
	Stokes           int       `json:"stokes" yaml:"stokes"`
	Frequency        float64   `json:"freq_central" yaml:"freq_central"` // Hz
}

// Assembler builds light curves. It never writes.
type Assembler struct {
	store datastore.Manager
	log   logger.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(store datastore.Manager, log logger.Logger) *Assembler {
	return &Assembler{store: store, log: log.Module("lightcurve")}
}

// LightCurve returns every measurement of the running-catalog source that
// xtrsrcID is associated with, across all images and bands, ordered by
// observation start. An unknown or unassociated source yields an empty slice.
func (a *Assembler) LightCurve(ctx context.Context, xtrsrcID int64) ([]Point, error) {
	rows, err := repository.NewLightCurveRepository(a.store.DB()).ForSource(ctx, xtrsrcID)
	if err != nil {
		return nil, errors.New(err).
			Component("lightcurve").
			Category(errors.CategoryDatabase).
			Context("xtrsrc", xtrsrcID).
			Build()
	}

	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, Point{
			ObservationStart: r.TaustartTS,
			IntegrationTime:  r.TauTime,
			IntFlux:          r.FInt,
			IntFluxErr:       r.FIntErr,
			SourceID:         r.Xtrsrc,
			BandID:           r.Band,
			Stokes:           r.Stokes,
			Frequency:        r.FreqCentral,
		})
	}
	a.log.Debug("assembled light curve",
		logger.Int64("xtrsrc", xtrsrcID),
		logger.Int("points", len(points)))
	return points, nil
}
