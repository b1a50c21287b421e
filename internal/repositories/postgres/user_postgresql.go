package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPostgreSQL struct {
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return translateError(u.helpers.getDB(ctx, tx).Create(user).Error)
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.helpers.getDB(ctx, tx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.helpers.getDB(ctx, tx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var users []*models.User
	err := u.helpers.getDB(ctx, tx).Order("created_at DESC").Find(&users).Error
	return users, translateError(err)
}

// Upsert refreshes profile fields on id conflict and never touches role
func (u *UserPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	db := u.helpers.getDB(ctx, tx)

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_at": time.Now(),
		}),
	}).Create(user).Error
	if err != nil {
		return translateError(err)
	}

	// reload so the caller sees the stored role
	return translateError(db.Where("id = ?", user.ID).First(user).Error)
}

func (u *UserPostgreSQL) UpdateRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (*models.User, error) {
	db := u.helpers.getDB(ctx, tx)
	result := db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}
	return u.GetByID(ctx, tx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
