package repository

import (
	"context"
	"time"
)

// LightCurveRow is one flux measurement of a light curve.
type LightCurveRow struct {
	TaustartTS  time.Time `gorm:"column:taustart_ts"`
	TauTime     float64   `gorm:"column:tau_time"`
	FInt        float64   `gorm:"column:f_int"`
	FIntErr     float64   `gorm:"column:f_int_err"`
	Xtrsrc      int64     `gorm:"column:xtrsrc"`
	Band        int64     `gorm:"column:band"`
	Stokes      int       `gorm:"column:stokes"`
	FreqCentral float64   `gorm:"column:freq_central"`
}

// LightCurveRepository reads light curves.
type LightCurveRepository interface {
	// ForSource returns every measurement of the running-catalog source the
	// extracted source belongs to, ordered by observation start then source id.
	// An unassociated or unknown source yields an empty result.
	ForSource(ctx context.Context, xtrsrcID int64) ([]LightCurveRow, error)
}
