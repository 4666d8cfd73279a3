package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one chat turn against an uploaded file.
type Message struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FileID        uuid.UUID `gorm:"column:file_id;type:uuid;not null;index"`
	UserID        string    `gorm:"column:user_id;type:text;not null;index"`
	Text          string    `gorm:"column:text;type:text;not null"`
	IsUserMessage bool      `gorm:"column:is_user_message;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
