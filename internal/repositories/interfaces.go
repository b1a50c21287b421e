package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by point lookups and targeted updates that match no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// IsNotFoundError checks whether err means "no matching row"
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError checks whether err means a unique constraint was hit
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// Repository groups every store the service needs. Each method of the
// individual repositories accepts an optional tx; nil means "use the root DB".
type Repository interface {
	User() UserRepository
	Class() ClassRepository
	Enrollment() EnrollmentRepository
	Recording() RecordingRepository
	Chat() ChatRepository

	// WithTransaction runs fn inside a database transaction
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type RecordingFilters struct {
	ClassID *string `json:"class_id"`
	Query   string  `json:"query"` // case-insensitive title match
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type ChatFilters struct {
	Since *time.Time  `json:"since"` // only messages created strictly after
	After *ChatCursor `json:"after"` // only messages ordered after this position
	Limit int         `json:"limit"`
}

// ChatCursor is a position in a feed's (created_at, id) order
type ChatCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}
