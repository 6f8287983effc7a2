package entities

// Monitor is a position measured in every image of its dataset. Runcat is
// set once the first forced measurement created a running-catalog entry.
type Monitor struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Dataset int64   `gorm:"column:dataset;not null;index"`
	Runcat  *int64  `gorm:"column:runcat;index"`
	RA      float64 `gorm:"column:ra;not null"`
	Decl    float64 `gorm:"column:decl;not null"`
}

// TableName returns the table name for GORM.
func (Monitor) TableName() string {
	return "monitor"
}
