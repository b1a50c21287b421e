package postgres

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type ChatPostgreSQL struct {
	helpers *SharedHelpers
}

func NewChatPostgreSQL(db *gorm.DB) repositories.ChatRepository {
	return &ChatPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *ChatPostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.ChatMessage) error {
	return translateError(c.helpers.getDB(ctx, tx).Create(message).Error)
}

func (c *ChatPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := c.helpers.getDB(ctx, tx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, translateError(err)
	}
	return &message, nil
}

func (c *ChatPostgreSQL) ListByClass(ctx context.Context, tx *gorm.DB, classID string, filters repositories.ChatFilters) ([]*models.ChatMessage, error) {
	query := c.helpers.getDB(ctx, tx).
		Preload("User").
		Where("class_id = ?", classID)

	if filters.Since != nil {
		query = query.Where("created_at > ?", *filters.Since)
	}
	if after := filters.After; after != nil {
		query = query.Where("(created_at > ? OR (created_at = ? AND id > ?))", after.CreatedAt, after.CreatedAt, after.ID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var messages []*models.ChatMessage
	err := query.Order("created_at ASC, id ASC").Find(&messages).Error
	return messages, translateError(err)
}
