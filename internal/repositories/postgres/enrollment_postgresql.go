package postgres

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{helpers: NewSharedHelpers(db)}
}

// CreateIfAbsent relies on the (class_id, student_id) unique index, so two
// concurrent enrolls of the same pair still yield one row.
func (e *EnrollmentPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error) {
	db := e.helpers.getDB(ctx, tx)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(enrollment)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	existing, err := e.GetByClassAndStudent(ctx, tx, enrollment.ClassID, enrollment.StudentID)
	if err != nil {
		return false, err
	}
	*enrollment = *existing
	return false, nil
}

func (e *EnrollmentPostgreSQL) GetByClassAndStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.helpers.getDB(ctx, tx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		First(&enrollment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) ListByClass(ctx context.Context, tx *gorm.DB, classID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.helpers.getDB(ctx, tx).
		Preload("Student").
		Where("class_id = ?", classID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, translateError(err)
}

func (e *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.helpers.getDB(ctx, tx).
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, translateError(err)
}

func (e *EnrollmentPostgreSQL) MarkAttended(ctx context.Context, tx *gorm.DB, classID, studentID string) (*models.Enrollment, error) {
	result := e.helpers.getDB(ctx, tx).
		Model(&models.Enrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Update("attended", true)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}
	return e.GetByClassAndStudent(ctx, tx, classID, studentID)
}
