package entities

import "time"

// Dataset groups the images processed together.
type Dataset struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Rerun          int        `gorm:"column:rerun;not null;default:0"`
	Description    string     `gorm:"column:description;size:250;not null;index"`
	ProcessStartTS time.Time  `gorm:"column:process_start_ts;not null"`
	ProcessEndTS   *time.Time `gorm:"column:process_end_ts"`
}

// TableName returns the table name for GORM.
func (Dataset) TableName() string {
	return "dataset"
}
