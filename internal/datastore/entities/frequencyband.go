package entities

// FrequencyBand is an observing band in Hz.
type FrequencyBand struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	FreqCentral float64 `gorm:"column:freq_central;not null"`
	FreqLow     float64 `gorm:"column:freq_low;not null;index:idx_frequencyband_range"`
	FreqHigh    float64 `gorm:"column:freq_high;not null;index:idx_frequencyband_range"`
}

// TableName returns the table name for GORM.
func (FrequencyBand) TableName() string {
	return "frequencyband"
}

// Contains reports whether freq lies inside the band.
func (b FrequencyBand) Contains(freq float64) bool {
	return freq >= b.FreqLow && freq <= b.FreqHigh
}
