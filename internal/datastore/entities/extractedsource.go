package entities

// Extraction types of an extracted source.
const (
	ExtractTypeBlind         = 0 // found by the blind source finder
	ExtractTypeForcedNull    = 1 // forced fit at a running-catalog position
	ExtractTypeForcedMonitor = 2 // forced fit at a monitor position
)

// ExtractedSource is one detection measured in one image. Positions and
// positional errors are in degrees, fit and systematic errors and the error
// radius in arcseconds.
type ExtractedSource struct {
	ID    int64 `gorm:"column:id;primaryKey;autoIncrement"`
	Image int64 `gorm:"column:image;not null;index"`
	Zone  int   `gorm:"column:zone;not null;index:idx_extractedsource_zone_decl"`

	RA            float64 `gorm:"column:ra;not null"`
	Decl          float64 `gorm:"column:decl;not null;index:idx_extractedsource_zone_decl"`
	RAFitErr      float64 `gorm:"column:ra_fit_err;not null"`
	DeclFitErr    float64 `gorm:"column:decl_fit_err;not null"`
	RAErr         float64 `gorm:"column:ra_err;not null"`
	DeclErr       float64 `gorm:"column:decl_err;not null"`
	UncertaintyEW float64 `gorm:"column:uncertainty_ew;not null"`
	UncertaintyNS float64 `gorm:"column:uncertainty_ns;not null"`
	X             float64 `gorm:"column:x;not null"`
	Y             float64 `gorm:"column:y;not null"`
	Z             float64 `gorm:"column:z;not null"`
	RACosDecl     float64 `gorm:"column:racosdecl;not null"`

	FPeak     float64 `gorm:"column:f_peak"`
	FPeakErr  float64 `gorm:"column:f_peak_err"`
	FInt      float64 `gorm:"column:f_int"`
	FIntErr   float64 `gorm:"column:f_int_err"`
	DetSigma  float64 `gorm:"column:det_sigma"`
	Semimajor float64 `gorm:"column:semimajor"`
	Semiminor float64 `gorm:"column:semiminor"`
	PA        float64 `gorm:"column:pa"`

	EWSysErr    float64 `gorm:"column:ew_sys_err;not null"`
	NSSysErr    float64 `gorm:"column:ns_sys_err;not null"`
	ErrorRadius float64 `gorm:"column:error_radius"`
	FitType     int     `gorm:"column:fit_type;not null;default:0"`
	ExtractType int     `gorm:"column:extract_type;not null;default:0"`
	FFRuncat    *int64  `gorm:"column:ff_runcat;index"`
	FFMonitor   *int64  `gorm:"column:ff_monitor;index"`
}

// TableName returns the table name for GORM.
func (ExtractedSource) TableName() string {
	return "extractedsource"
}
