package entities

import "time"

// Image is one calibrated image. Beam axes are stored in degrees and the
// beam position angle in degrees east of north.
type Image struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Dataset         int64     `gorm:"column:dataset;not null;index:idx_image_dataset_start"`
	Band            int64     `gorm:"column:band;not null;index"`
	Stokes          int       `gorm:"column:stokes;not null;default:1"`
	TauTime         float64   `gorm:"column:tau_time;not null"`
	FreqEff         float64   `gorm:"column:freq_eff;not null"`
	FreqBW          float64   `gorm:"column:freq_bw"`
	TaustartTS      time.Time `gorm:"column:taustart_ts;not null;index:idx_image_dataset_start"`
	RbSmaj          float64   `gorm:"column:rb_smaj"`
	RbSmin          float64   `gorm:"column:rb_smin"`
	RbPa            float64   `gorm:"column:rb_pa"`
	Deltax          float64   `gorm:"column:deltax"`
	Deltay          float64   `gorm:"column:deltay"`
	URL             string    `gorm:"column:url;size:1024"`
	CentreRA        float64   `gorm:"column:centre_ra"`
	CentreDecl      float64   `gorm:"column:centre_decl"`
	XtrRadius       float64   `gorm:"column:xtr_radius"`
	RmsQC           float64   `gorm:"column:rms_qc"`
	RmsMin          float64   `gorm:"column:rms_min"`
	RmsMax          float64   `gorm:"column:rms_max"`
	DetectionThresh float64   `gorm:"column:detection_thresh"`
	AnalysisThresh  float64   `gorm:"column:analysis_thresh"`
}

// TableName returns the table name for GORM.
func (Image) TableName() string {
	return "image"
}
