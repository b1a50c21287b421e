package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type ClassPostgreSQL struct {
	helpers *SharedHelpers
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{helpers: NewSharedHelpers(db)}
}

// Create inserts a class; a room code clash surfaces as ErrDuplicate
func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	return translateError(c.helpers.getDB(ctx, tx).Create(class).Error)
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Class, error) {
	var class models.Class
	if err := c.helpers.getDB(ctx, tx).Where("id = ?", id).First(&class).Error; err != nil {
		return nil, translateError(err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) GetByRoomCode(ctx context.Context, tx *gorm.DB, roomCode string) (*models.Class, error) {
	var class models.Class
	if err := c.helpers.getDB(ctx, tx).Where("room_code = ?", roomCode).First(&class).Error; err != nil {
		return nil, translateError(err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) ListByLecturer(ctx context.Context, tx *gorm.DB, lecturerID string) ([]*models.Class, error) {
	var classes []*models.Class
	err := c.helpers.getDB(ctx, tx).
		Where("lecturer_id = ?", lecturerID).
		Order("scheduled_at DESC").
		Find(&classes).Error
	return classes, translateError(err)
}

func (c *ClassPostgreSQL) ListByStatus(ctx context.Context, tx *gorm.DB, status models.ClassStatus) ([]*models.Class, error) {
	var classes []*models.Class
	err := c.helpers.getDB(ctx, tx).
		Where("status = ?", status).
		Order("scheduled_at ASC").
		Find(&classes).Error
	return classes, translateError(err)
}

func (c *ClassPostgreSQL) ExistsByRoomCode(ctx context.Context, tx *gorm.DB, roomCode string) (bool, error) {
	var count int64
	err := c.helpers.getDB(ctx, tx).
		Model(&models.Class{}).
		Where("room_code = ?", roomCode).
		Count(&count).Error
	return count > 0, translateError(err)
}

func (c *ClassPostgreSQL) TransitionStatus(ctx context.Context, tx *gorm.DB, id string, from, to models.ClassStatus, recordingURL *string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if recordingURL != nil {
		updates["recording_url"] = *recordingURL
	}

	result := c.helpers.getDB(ctx, tx).
		Model(&models.Class{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (c *ClassPostgreSQL) AddStatusChange(ctx context.Context, tx *gorm.DB, change *models.ClassStatusChange) error {
	return translateError(c.helpers.getDB(ctx, tx).Create(change).Error)
}

func (c *ClassPostgreSQL) GetStatusHistory(ctx context.Context, tx *gorm.DB, classID string) ([]*models.ClassStatusChange, error) {
	var changes []*models.ClassStatusChange
	err := c.helpers.getDB(ctx, tx).
		Where("class_id = ?", classID).
		Order("created_at ASC, id ASC").
		Find(&changes).Error
	return changes, translateError(err)
}
