package models

import (
	"time"

	"github.com/google/uuid"
)

// TermsAndConditions is a versioned content blob. At most one row is
// active at any time; publishing a new version deactivates the rest and
// resets every user's acceptance flag.
type TermsAndConditions struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Version   string    `gorm:"column:version;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (TermsAndConditions) TableName() string {
	return "terms_and_conditions"
}
