package ingest

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// ImageParams describes an image as delivered by the imaging pipeline.
// Beam axes are in pixels and the beam position angle in radians; they are
// stored in degrees using the pixel scale.
type ImageParams struct {
	Dataset         int64     `yaml:"dataset"`
	FreqEff         float64   `yaml:"freq_eff"`
	FreqBW          float64   `yaml:"freq_bw"`
	TaustartTS      time.Time `yaml:"taustart_ts"`
	TauTime         float64   `yaml:"tau_time"`
	Stokes          int       `yaml:"stokes"`
	BeamSmajPix     float64   `yaml:"beam_smaj_pix"`
	BeamSminPix     float64   `yaml:"beam_smin_pix"`
	BeamPaRad       float64   `yaml:"beam_pa_rad"`
	Deltax          float64   `yaml:"deltax"`
	Deltay          float64   `yaml:"deltay"`
	URL             string    `yaml:"url"`
	CentreRA        float64   `yaml:"centre_ra"`
	CentreDecl      float64   `yaml:"centre_decl"`
	XtrRadius       float64   `yaml:"xtr_radius"`
	RmsQC           float64   `yaml:"rms_qc"`
	RmsMin          float64   `yaml:"rms_min"`
	RmsMax          float64   `yaml:"rms_max"`
	DetectionThresh float64   `yaml:"detection_thresh"`
	AnalysisThresh  float64   `yaml:"analysis_thresh"`
}

// stokesI is stored when ImageParams.Stokes is unset.
const stokesI = 1

func (p *ImageParams) validate() error {
	switch {
	case !(p.FreqEff > 0) || math.IsInf(p.FreqEff, 0):
		return contractError("freq_eff %v must be positive", p.FreqEff)
	case !isFinite(p.FreqBW) || p.FreqBW < 0:
		return contractError("freq_bw %v must be finite and non-negative", p.FreqBW)
	case p.TaustartTS.IsZero():
		return contractError("taustart_ts is required")
	case !isFinite(p.TauTime) || p.TauTime < 0:
		return contractError("tau_time %v must be finite and non-negative", p.TauTime)
	case !isFinite(p.Deltax) || !isFinite(p.Deltay):
		return contractError("pixel scale (%v, %v) must be finite", p.Deltax, p.Deltay)
	}
	return astrometry.ValidatePosition(p.CentreRA, p.CentreDecl)
}

// toEntity converts the pipeline parameters into the stored image row.
func (p *ImageParams) toEntity(bandID int64) *entities.Image {
	stokes := p.Stokes
	if stokes == 0 {
		stokes = stokesI
	}
	return &entities.Image{
		Dataset:         p.Dataset,
		Band:            bandID,
		Stokes:          stokes,
		TauTime:         p.TauTime,
		FreqEff:         p.FreqEff,
		FreqBW:          p.FreqBW,
		TaustartTS:      p.TaustartTS.UTC(),
		RbSmaj:          p.BeamSmajPix * math.Abs(p.Deltax),
		RbSmin:          p.BeamSminPix * math.Abs(p.Deltay),
		RbPa:            180 * p.BeamPaRad / math.Pi,
		Deltax:          p.Deltax,
		Deltay:          p.Deltay,
		URL:             p.URL,
		CentreRA:        p.CentreRA,
		CentreDecl:      p.CentreDecl,
		XtrRadius:       p.XtrRadius,
		RmsQC:           p.RmsQC,
		RmsMin:          p.RmsMin,
		RmsMax:          p.RmsMax,
		DetectionThresh: p.DetectionThresh,
		AnalysisThresh:  p.AnalysisThresh,
	}
}

// RegisterDataset creates a dataset and returns its id. Repeated
// descriptions get increasing rerun numbers.
func (i *Ingester) RegisterDataset(ctx context.Context, description string) (int64, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, contractError("dataset description is empty")
	}

	dataset := &entities.Dataset{Description: description, ProcessStartTS: i.now()}
	err := i.store.Transaction(ctx, "insert_dataset", func(tx *gorm.DB) error {
		datasets := repository.NewDatasetRepository(tx)
		rerun, err := datasets.NextRerun(ctx, description)
		if err != nil {
			return err
		}
		dataset.Rerun = rerun
		return datasets.Create(ctx, dataset)
	})
	if err != nil {
		return 0, err
	}

	i.log.WithContext(ctx).Info("dataset registered",
		logger.Int64("dataset_id", dataset.ID),
		logger.Int("rerun", dataset.Rerun),
		logger.String("description", description))
	return dataset.ID, nil
}

// MarkDatasetComplete records the end of processing of a dataset.
func (i *Ingester) MarkDatasetComplete(ctx context.Context, datasetID int64) error {
	err := i.store.Transaction(ctx, "update_dataset_process_end_ts", func(tx *gorm.DB) error {
		err := repository.NewDatasetRepository(tx).MarkComplete(ctx, datasetID, i.now())
		if errors.Is(err, repository.ErrDatasetNotFound) {
			return notFoundError(err, "dataset", datasetID)
		}
		return err
	})
	if err != nil {
		return err
	}
	i.log.WithContext(ctx).Info("dataset complete", logger.Int64("dataset_id", datasetID))
	return nil
}

// RegisterImage stores an image of an existing dataset and returns its id.
// The frequency band containing freq_eff is reused or created.
func (i *Ingester) RegisterImage(ctx context.Context, params *ImageParams) (int64, error) {
	if err := params.validate(); err != nil {
		return 0, err
	}

	var (
		image   *entities.Image
		bandID  int64
		bandKey = strconv.FormatFloat(params.FreqEff, 'g', -1, 64)
	)
	err := i.store.Transaction(ctx, "insert_image", func(tx *gorm.DB) error {
		if _, err := repository.NewDatasetRepository(tx).GetByID(ctx, params.Dataset); err != nil {
			if errors.Is(err, repository.ErrDatasetNotFound) {
				return notFoundError(err, "dataset", params.Dataset)
			}
			return err
		}

		if cached, ok := i.bands.Get(bandKey); ok {
			bandID = cached.(int64)
		} else {
			band, err := repository.NewFrequencyBandRepository(tx).GetOrCreate(ctx, params.FreqEff, params.FreqBW)
			if err != nil {
				return err
			}
			bandID = band.ID
		}

		image = params.toEntity(bandID)
		return repository.NewImageRepository(tx).Create(ctx, image)
	})
	if err != nil {
		return 0, err
	}

	// Only committed bands are cached
	i.bands.Set(bandKey, bandID, cache.DefaultExpiration)

	i.log.WithContext(ctx).Info("image registered",
		logger.Int64("image_id", image.ID),
		logger.Int64("dataset_id", params.Dataset),
		logger.Int64("band_id", bandID),
		logger.Time("taustart_ts", image.TaustartTS))
	return image.ID, nil
}

// RegisterMonitorPositions adds positions to be measured in every image of
// the dataset and returns their monitor ids in input order.
func (i *Ingester) RegisterMonitorPositions(ctx context.Context, datasetID int64, positions []spatial.Point) ([]int64, error) {
	rows := make([]entities.Monitor, 0, len(positions))
	for idx, p := range positions {
		if err := astrometry.ValidatePosition(p.RA, p.Dec); err != nil {
			return nil, errors.New(err).
				Component("ingest").
				Context("index", idx).
				Build()
		}
		rows = append(rows, entities.Monitor{Dataset: datasetID, RA: p.RA, Decl: p.Dec})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	err := i.store.Transaction(ctx, "insert_monitor", func(tx *gorm.DB) error {
		if _, err := repository.NewDatasetRepository(tx).GetByID(ctx, datasetID); err != nil {
			if errors.Is(err, repository.ErrDatasetNotFound) {
				return notFoundError(err, "dataset", datasetID)
			}
			return err
		}
		return repository.NewMonitorRepository(tx).CreateBatch(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rows))
	for idx := range rows {
		ids[idx] = rows[idx].ID
	}
	i.log.WithContext(ctx).Info("monitor positions registered",
		logger.Int64("dataset_id", datasetID),
		logger.Int("count", len(ids)))
	return ids, nil
}
