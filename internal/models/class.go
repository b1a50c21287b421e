package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassStatus string

const (
	ClassScheduled ClassStatus = "scheduled"
	ClassLive      ClassStatus = "live"
	ClassEnded     ClassStatus = "ended"
	ClassCancelled ClassStatus = "cancelled"
)

const (
	DefaultClassDuration = 60 // minutes
	MinClassDuration     = 15
	MaxClassDuration     = 240
	RoomCodeLength       = 8
)

// ClassStatuses lists every valid status
var ClassStatuses = []ClassStatus{ClassScheduled, ClassLive, ClassEnded, ClassCancelled}

// classTransitions is the only source of legal lifecycle edges.
var classTransitions = map[ClassStatus][]ClassStatus{
	ClassScheduled: {ClassLive, ClassCancelled},
	ClassLive:      {ClassEnded},
}

// ParseClassStatus converts raw input into the closed status set
func ParseClassStatus(s string) (ClassStatus, error) {
	status := ClassStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown class status %q", s)
	}
	return status, nil
}

func (s ClassStatus) IsValid() bool {
	for _, status := range ClassStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status
func (s ClassStatus) IsTerminal() bool {
	return len(classTransitions[s]) == 0
}

// CanTransitionTo reports whether from -> to is a legal lifecycle edge
func (s ClassStatus) CanTransitionTo(to ClassStatus) bool {
	for _, next := range classTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable in one step
func (s ClassStatus) NextStatuses() []ClassStatus {
	next := classTransitions[s]
	out := make([]ClassStatus, len(next))
	copy(out, next)
	return out
}

type Class struct {
	ID           string      `json:"id" gorm:"primaryKey;size:64"`
	Title        string      `json:"title" gorm:"not null;size:200"`
	Description  *string     `json:"description" gorm:"type:text"`
	LecturerID   string      `json:"lecturerId" gorm:"not null;size:64;index"`
	ScheduledAt  time.Time   `json:"scheduledAt" gorm:"not null;index"`
	Duration     int         `json:"duration" gorm:"not null;default:60"`
	Status       ClassStatus `json:"status" gorm:"not null;default:scheduled;size:20;index"`
	RoomCode     string      `json:"roomCode" gorm:"uniqueIndex;not null;size:16"`
	RecordingURL *string     `json:"recordingUrl" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Class) TableName() string {
	return "classes"
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = ClassScheduled
	}
	if c.Duration == 0 {
		c.Duration = DefaultClassDuration
	}
	return nil
}

// IsOwnedBy reports whether userID created the class
func (c *Class) IsOwnedBy(userID string) bool {
	return c.LecturerID == userID
}
