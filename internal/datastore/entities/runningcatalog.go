package entities

// RunningCatalog is one astronomical source tracked across images. The
// position is the inverse-variance weighted mean of all associated
// detections; AvgWeightEW and AvgWeightNS hold the mean weight per datapoint.
type RunningCatalog struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Xtrsrc          int64   `gorm:"column:xtrsrc;not null;index"`
	Dataset         int64   `gorm:"column:dataset;not null;index:idx_runningcatalog_search,priority:1"`
	Datapoints      int     `gorm:"column:datapoints;not null"`
	Zone            int     `gorm:"column:zone;not null;index:idx_runningcatalog_search,priority:2"`
	WmRA            float64 `gorm:"column:wm_ra;not null"`
	WmDecl          float64 `gorm:"column:wm_decl;not null;index:idx_runningcatalog_search,priority:3"`
	WmUncertaintyEW float64 `gorm:"column:wm_uncertainty_ew;not null"`
	WmUncertaintyNS float64 `gorm:"column:wm_uncertainty_ns;not null"`
	AvgWeightEW     float64 `gorm:"column:avg_weight_ew;not null"`
	AvgWeightNS     float64 `gorm:"column:avg_weight_ns;not null"`
	X               float64 `gorm:"column:x;not null"`
	Y               float64 `gorm:"column:y;not null"`
	Z               float64 `gorm:"column:z;not null"`
	MonSrc          bool    `gorm:"column:mon_src;not null;default:false"`
}

// TableName returns the table name for GORM.
func (RunningCatalog) TableName() string {
	return "runningcatalog"
}
