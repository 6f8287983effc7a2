package repository

import (
	"context"

	"gorm.io/gorm"
)

// lightCurveRepository implements LightCurveRepository.
type lightCurveRepository struct {
	db *gorm.DB
}

// NewLightCurveRepository creates a new LightCurveRepository.
func NewLightCurveRepository(db *gorm.DB) LightCurveRepository {
	return &lightCurveRepository{db: db}
}

func (r *lightCurveRepository) ForSource(ctx context.Context, xtrsrcID int64) ([]LightCurveRow, error) {
	runcats := r.db.Table(tableAssocXtrSource).
		Select("runcat").
		Where("xtrsrc = ?", xtrsrcID)

	var rows []LightCurveRow
	err := r.db.WithContext(ctx).Table(tableExtractedSource+" ex").
		Select("im.taustart_ts AS taustart_ts, im.tau_time AS tau_time, "+
			"ex.f_int AS f_int, ex.f_int_err AS f_int_err, ex.id AS xtrsrc, "+
			"im.band AS band, im.stokes AS stokes, fb.freq_central AS freq_central").
		Joins("JOIN "+tableAssocXtrSource+" ax ON ax.xtrsrc = ex.id").
		Joins("JOIN "+tableImage+" im ON im.id = ex.image").
		Joins("JOIN "+tableFrequencyBand+" fb ON fb.id = im.band").
		Where("ax.runcat IN (?)", runcats).
		Order("im.taustart_ts, ex.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
