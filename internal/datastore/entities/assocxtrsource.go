package entities

// Association types recorded in assocxtrsource.type.
const (
	AssocTypeNew           = 1 // detection created the running-catalog entry
	AssocTypeMatched       = 2 // blind detection matched an existing entry
	AssocTypeForcedNull    = 3 // forced fit at the entry's position
	AssocTypeForcedMonitor = 4 // forced fit at a monitor position
)

// AssocXtrSource links one extracted source to its running-catalog source.
// An extracted source has at most one association.
type AssocXtrSource struct {
	ID             int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Runcat         int64   `gorm:"column:runcat;not null;index"`
	Xtrsrc         int64   `gorm:"column:xtrsrc;not null;uniqueIndex"`
	Type           int     `gorm:"column:type;not null"`
	DistanceArcsec float64 `gorm:"column:distance_arcsec;not null"`
	R              float64 `gorm:"column:r;not null"`
}

// TableName returns the table name for GORM.
func (AssocXtrSource) TableName() string {
	return "assocxtrsource"
}
