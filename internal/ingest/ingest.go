// Package ingest writes source-finder detections of one image into the
// extractedsource table.
//
// Every detection is enriched with its declination zone, Cartesian unit
// vector, ra*cos(dec) and propagated positional errors before all
// surviving rows of the image are inserted in one transaction. Association
// with the running catalog is a separate step (see package association).
package ingest

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// DomainPolicy decides what happens to a detection with an out-of-range
// position or positional error.
type DomainPolicy int

const (
	// AbortOnDomainError fails the whole ingest call.
	AbortOnDomainError DomainPolicy = iota
	// DropOutOfDomain drops the detection, logs it and continues.
	DropOutOfDomain
)

// Config holds the ingestion parameters.
type Config struct {
	// UnconstrainedErrorRadius replaces an infinite error radius.
	UnconstrainedErrorRadius float64
	DomainPolicy             DomainPolicy
}

// ConfigFromSettings derives the ingestion parameters from the loaded settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		UnconstrainedErrorRadius: settings.SourceExtraction.UnconstrainedErrorRadius,
		DomainPolicy:             AbortOnDomainError,
	}
}

// Ingester stores detections and registers the datasets, images and
// monitor positions they refer to. It is safe for concurrent use.
type Ingester struct {
	store   datastore.Manager
	cfg     Config
	metrics *metrics.CatalogMetrics
	log     logger.Logger
	bands   *cache.Cache
	now     func() time.Time
}

// NewIngester creates an Ingester. metrics may be nil.
func NewIngester(store datastore.Manager, cfg Config, m *metrics.CatalogMetrics, log logger.Logger) *Ingester {
	if cfg.UnconstrainedErrorRadius <= 0 {
		cfg.UnconstrainedErrorRadius = conf.DefaultUnconstrainedErrorRadius
	}
	return &Ingester{
		store:   store,
		cfg:     cfg,
		metrics: m,
		log:     log.Module("ingest"),
		// Bands never change once created; no janitor goroutine is needed
		bands: cache.New(cache.NoExpiration, 0),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Ingest stores the detections of one image and returns how many rows were
// inserted. Detections with non-finite flux errors are dropped.
//
// ffRuncat must hold one running-catalog id per detection when extractType
// is ForcedNull and be empty otherwise; ffMonitor likewise for ForcedMonitor.
// Either every surviving detection is stored or none is.
func (i *Ingester) Ingest(ctx context.Context, imageID int64, dets []Detection, extractType ExtractType, ffRuncat, ffMonitor []int64) (int, error) {
	if err := checkContract(len(dets), extractType, ffRuncat, ffMonitor); err != nil {
		return 0, err
	}

	log := i.log.WithContext(ctx).With(
		logger.Int64("image_id", imageID),
		logger.String("extract_type", extractType.String()))

	if len(dets) == 0 {
		log.Info("no sources to insert")
		return 0, nil
	}

	rows := make([]entities.ExtractedSource, 0, len(dets))
	dropped := 0
	for idx := range dets {
		d := &dets[idx]
		row, err := i.buildRow(imageID, d, extractType)
		if err != nil {
			if i.shouldDrop(err) {
				dropped++
				log.Warn("dropped source fit",
					logger.Int("index", idx),
					logger.Float64("ra", d.RA),
					logger.Float64("dec", d.Dec),
					logger.Error(err))
				continue
			}
			return 0, errors.New(err).
				Component("ingest").
				Context("image_id", imageID).
				Context("index", idx).
				Build()
		}

		switch extractType {
		case ForcedNull:
			runcat := ffRuncat[idx]
			row.FFRuncat = &runcat
		case ForcedMonitor:
			monitor := ffMonitor[idx]
			row.FFMonitor = &monitor
		}
		rows = append(rows, row)
	}

	err := i.store.Transaction(ctx, "ingest", func(tx *gorm.DB) error {
		if _, err := repository.NewImageRepository(tx).GetByID(ctx, imageID); err != nil {
			if errors.Is(err, repository.ErrImageNotFound) {
				return notFoundError(err, "image", imageID)
			}
			return err
		}
		if err := i.checkReferences(ctx, tx, extractType, ffRuncat, ffMonitor); err != nil {
			return err
		}
		return repository.NewExtractedSourceRepository(tx).CreateBatch(ctx, rows)
	})
	if err != nil {
		i.metrics.RecordSources(extractType.String(), metrics.StatusError, len(rows))
		log.Error("failed to insert sources", logger.Int("count", len(rows)), logger.Error(err))
		return 0, err
	}

	i.metrics.RecordSources(extractType.String(), metrics.StatusInserted, len(rows))
	i.metrics.RecordSources(extractType.String(), metrics.StatusDropped, dropped)
	log.Info("inserted sources",
		logger.Int("inserted", len(rows)),
		logger.Int("dropped", dropped))
	return len(rows), nil
}

// checkContract validates the shape of an Ingest call.
func checkContract(n int, extractType ExtractType, ffRuncat, ffMonitor []int64) error {
	switch extractType {
	case Blind:
		if len(ffRuncat) != 0 || len(ffMonitor) != 0 {
			return contractError("blind detections take no forced-fit ids (got %d runcat, %d monitor)",
				len(ffRuncat), len(ffMonitor))
		}
	case ForcedNull:
		if len(ffRuncat) != n {
			return contractError("forced-null detections need one runcat id each: %d detections, %d ids", n, len(ffRuncat))
		}
		if len(ffMonitor) != 0 {
			return contractError("forced-null detections take no monitor ids")
		}
	case ForcedMonitor:
		if len(ffMonitor) != n {
			return contractError("forced-monitor detections need one monitor id each: %d detections, %d ids", n, len(ffMonitor))
		}
		if len(ffRuncat) != 0 {
			return contractError("forced-monitor detections take no runcat ids")
		}
	default:
		return contractError("not a valid extractedsource insert type: %d", int(extractType))
	}
	return nil
}

// shouldDrop reports whether a per-detection error drops only that detection.
func (i *Ingester) shouldDrop(err error) bool {
	if errors.IsCategory(err, errors.CategoryDataQuality) {
		return true
	}
	return i.cfg.DomainPolicy == DropOutOfDomain && errors.IsCategory(err, errors.CategoryDomain)
}

// buildRow derives every stored column of one detection.
func (i *Ingester) buildRow(imageID int64, d *Detection, extractType ExtractType) (entities.ExtractedSource, error) {
	if err := d.checkFluxErrors(); err != nil {
		return entities.ExtractedSource{}, err
	}
	if err := astrometry.ValidatePosition(d.RA, d.Dec); err != nil {
		return entities.ExtractedSource{}, err
	}
	if err := d.checkErrors(); err != nil {
		return entities.ExtractedSource{}, err
	}

	errorRadius, _ := astrometry.SubstituteUnconstrained(d.ErrorRadius, i.cfg.UnconstrainedErrorRadius)
	tuple, err := astrometry.Propagate(astrometry.PositionErrors{
		Dec:         d.Dec,
		RAFitErr:    d.RAFitErr,
		DeclFitErr:  d.DeclFitErr,
		EWSysErr:    d.EWSysErr,
		NSSysErr:    d.NSSysErr,
		ErrorRadius: errorRadius,
	})
	if err != nil {
		return entities.ExtractedSource{}, err
	}

	x, y, z := astrometry.EquatorialToCartesian(d.RA, d.Dec)
	fitType := 0
	if d.GaussianFit {
		fitType = 1
	}

	return entities.ExtractedSource{
		Image:         imageID,
		Zone:          spatial.Zone(d.Dec),
		RA:            d.RA,
		Decl:          d.Dec,
		RAFitErr:      d.RAFitErr,
		DeclFitErr:    d.DeclFitErr,
		RAErr:         tuple.RAErr,
		DeclErr:       tuple.DeclErr,
		UncertaintyEW: tuple.UncertaintyEW,
		UncertaintyNS: tuple.UncertaintyNS,
		X:             x,
		Y:             y,
		Z:             z,
		RACosDecl:     astrometry.RACosDecl(d.RA, d.Dec),
		FPeak:         d.PeakFlux,
		FPeakErr:      d.PeakFluxErr,
		FInt:          d.IntFlux,
		FIntErr:       d.IntFluxErr,
		DetSigma:      d.Significance,
		Semimajor:     d.Semimajor,
		Semiminor:     d.Semiminor,
		PA:            d.PA,
		EWSysErr:      d.EWSysErr,
		NSSysErr:      d.NSSysErr,
		ErrorRadius:   errorRadius,
		FitType:       fitType,
		ExtractType:   int(extractType),
	}, nil
}

// checkReferences verifies that every forced-fit id points at an existing row.
func (i *Ingester) checkReferences(ctx context.Context, tx *gorm.DB, extractType ExtractType, ffRuncat, ffMonitor []int64) error {
	var (
		ids      []int64
		existing []int64
		err      error
		what     string
	)
	switch extractType {
	case ForcedNull:
		ids, what = distinct(ffRuncat), "runningcatalog"
		existing, err = repository.NewRunningCatalogRepository(tx, false).ExistingIDs(ctx, ids)
	case ForcedMonitor:
		ids, what = distinct(ffMonitor), "monitor"
		existing, err = repository.NewMonitorRepository(tx).ExistingIDs(ctx, ids)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if len(existing) == len(ids) {
		return nil
	}
	for _, id := range ids {
		if _, found := slices.BinarySearch(existing, id); !found {
			return contractError("forced-fit id %d does not exist in %s", id, what)
		}
	}
	return nil
}

// distinct returns the sorted unique ids.
func distinct(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
