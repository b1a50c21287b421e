package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment associates one student with one class.
// (class_id, student_id) is unique.
type Enrollment struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	ClassID    string    `json:"classId" gorm:"not null;size:64;uniqueIndex:idx_enrollments_class_student"`
	StudentID  string    `json:"studentId" gorm:"not null;size:64;uniqueIndex:idx_enrollments_class_student;index"`
	EnrolledAt time.Time `json:"enrolledAt" gorm:"autoCreateTime"`
	Attended   bool      `json:"attended" gorm:"not null;default:false"`

	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
