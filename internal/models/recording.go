package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recording is append-only metadata for a finished session's media
type Recording struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	ClassID      string    `json:"classId" gorm:"not null;size:64;index"`
	Title        string    `json:"title" gorm:"not null;size:200"`
	URL          string    `json:"url" gorm:"not null;type:text"`
	Duration     *int      `json:"duration"` // seconds
	ThumbnailURL *string   `json:"thumbnailUrl" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

func (Recording) TableName() string {
	return "recordings"
}

func (r *Recording) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
