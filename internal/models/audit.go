package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClassStatusChange records one lifecycle transition of a class
type ClassStatusChange struct {
	ID         string         `json:"id" gorm:"primaryKey;size:64"`
	ClassID    string         `json:"classId" gorm:"not null;size:64;index"`
	FromStatus ClassStatus    `json:"fromStatus" gorm:"not null;size:20"`
	ToStatus   ClassStatus    `json:"toStatus" gorm:"not null;size:20"`
	ChangedBy  string         `json:"changedBy" gorm:"not null;size:64"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (ClassStatusChange) TableName() string {
	return "class_status_changes"
}

func (c *ClassStatusChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		c.ID = id.String()
	}
	return nil
}
