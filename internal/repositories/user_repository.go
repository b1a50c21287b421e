package repositories

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository is the identity store
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) // newest first

	// Upsert inserts or refreshes profile fields by id; an existing role is kept
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (*models.User, error)
}
