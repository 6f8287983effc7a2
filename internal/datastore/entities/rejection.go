package entities

// RejectReason describes why an image may be rejected.
type RejectReason struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Description string `gorm:"column:description;size:512;not null"`
}

// TableName returns the table name for GORM.
func (RejectReason) TableName() string {
	return "rejectreason"
}

// Rejection marks an image as rejected. An image may carry several rejections.
type Rejection struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Image        int64  `gorm:"column:image;not null;index"`
	RejectReason int64  `gorm:"column:rejectreason;not null"`
	Comment      string `gorm:"column:comment;size:512"`
}

// TableName returns the table name for GORM.
func (Rejection) TableName() string {
	return "rejection"
}

// RejectReasons is the seed content of rejectreason.
var RejectReasons = []RejectReason{
	{ID: 0, Description: "RMS invalid"},
	{ID: 1, Description: "beam invalid"},
	{ID: 2, Description: "bright source near"},
	{ID: 3, Description: "tau_time invalid"},
}
