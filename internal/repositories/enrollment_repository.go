package repositories

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"gorm.io/gorm"
)

// EnrollmentRepository interface for enrollment and attendance storage
type EnrollmentRepository interface {
	// CreateIfAbsent inserts the enrollment unless (class_id, student_id) exists.
	// On conflict enrollment is overwritten with the stored row and created is false.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (created bool, err error)
	GetByClassAndStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) (*models.Enrollment, error)
	ListByClass(ctx context.Context, tx *gorm.DB, classID string) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Enrollment, error)

	// MarkAttended sets attended=true on the matching row; ErrNotFound if there is none
	MarkAttended(ctx context.Context, tx *gorm.DB, classID, studentID string) (*models.Enrollment, error)
}

// RecordingRepository interface for the append-only recording catalog
type RecordingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, recording *models.Recording) error
	ListByClass(ctx context.Context, tx *gorm.DB, classID string) ([]*models.Recording, error)
	List(ctx context.Context, tx *gorm.DB, filters RecordingFilters) ([]*models.Recording, error) // newest first
}

// ChatRepository interface for the append-only per-class chat log
type ChatRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.ChatMessage) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ChatMessage, error)
	ListByClass(ctx context.Context, tx *gorm.DB, classID string, filters ChatFilters) ([]*models.ChatMessage, error) // created_at ASC
}
