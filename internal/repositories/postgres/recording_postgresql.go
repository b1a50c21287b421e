package postgres

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type RecordingPostgreSQL struct {
	helpers *SharedHelpers
}

func NewRecordingPostgreSQL(db *gorm.DB) repositories.RecordingRepository {
	return &RecordingPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (r *RecordingPostgreSQL) Create(ctx context.Context, tx *gorm.DB, recording *models.Recording) error {
	return translateError(r.helpers.getDB(ctx, tx).Create(recording).Error)
}

func (r *RecordingPostgreSQL) ListByClass(ctx context.Context, tx *gorm.DB, classID string) ([]*models.Recording, error) {
	return r.List(ctx, tx, repositories.RecordingFilters{ClassID: &classID})
}

func (r *RecordingPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.RecordingFilters) ([]*models.Recording, error) {
	query := r.helpers.getDB(ctx, tx).Model(&models.Recording{})

	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var recordings []*models.Recording
	err := query.Order("created_at DESC").Find(&recordings).Error
	return recordings, translateError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
