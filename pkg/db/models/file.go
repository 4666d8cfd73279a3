package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
)

// File is an uploaded PDF tracked for the chat pipeline.
type File struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       string             `gorm:"column:user_id;type:text;not null;index"`
	Name         string             `gorm:"column:name;not null"`
	Key          string             `gorm:"column:key;not null;uniqueIndex"`
	URL          string             `gorm:"column:url;not null"`
	UploadStatus enums.UploadStatus `gorm:"column:upload_status;not null;default:'PENDING'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
