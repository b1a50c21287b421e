package repositories

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"gorm.io/gorm"
)

// ClassRepository interface for class lifecycle storage
type ClassRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Class, error)
	GetByRoomCode(ctx context.Context, tx *gorm.DB, roomCode string) (*models.Class, error)

	// Query operations
	ListByLecturer(ctx context.Context, tx *gorm.DB, lecturerID string) ([]*models.Class, error) // scheduled_at DESC
	ListByStatus(ctx context.Context, tx *gorm.DB, status models.ClassStatus) ([]*models.Class, error) // scheduled_at ASC

	// Validation helpers
	ExistsByRoomCode(ctx context.Context, tx *gorm.DB, roomCode string) (bool, error)

	// Status management. TransitionStatus only writes when the row is still in
	// from, and reports whether it did.
	TransitionStatus(ctx context.Context, tx *gorm.DB, id string, from, to models.ClassStatus, recordingURL *string) (bool, error)
	AddStatusChange(ctx context.Context, tx *gorm.DB, change *models.ClassStatusChange) error
	GetStatusHistory(ctx context.Context, tx *gorm.DB, classID string) ([]*models.ClassStatusChange, error)
}
