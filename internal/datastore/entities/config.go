package entities

// Config is one persisted configuration value of a dataset. Type holds the
// value's type tag (str, int, float or bool).
type Config struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Dataset int64  `gorm:"column:dataset;not null;uniqueIndex:idx_config_key"`
	Section string `gorm:"column:section;size:100;not null;uniqueIndex:idx_config_key"`
	Key     string `gorm:"column:key;size:100;not null;uniqueIndex:idx_config_key"`
	Value   string `gorm:"column:value;size:500"`
	Type    string `gorm:"column:type;size:5;not null"`
}

// TableName returns the table name for GORM.
func (Config) TableName() string {
	return "config"
}

// All returns every catalog entity in migration order.
func All() []any {
	return []any{
		&Dataset{},
		&FrequencyBand{},
		&Image{},
		&ExtractedSource{},
		&RunningCatalog{},
		&AssocXtrSource{},
		&Monitor{},
		&RejectReason{},
		&Rejection{},
		&Config{},
	}
}
