package postgres

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	user       repositories.UserRepository
	class      repositories.ClassRepository
	enrollment repositories.EnrollmentRepository
	recording  repositories.RecordingRepository
	chat       repositories.ChatRepository
}

// NewRepository wires every gorm-backed repository around one connection
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		class:      NewClassPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		recording:  NewRecordingPostgreSQL(db),
		chat:       NewChatPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository             { return r.user }
func (r *repository) Class() repositories.ClassRepository           { return r.class }
func (r *repository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *repository) Recording() repositories.RecordingRepository   { return r.recording }
func (r *repository) Chat() repositories.ChatRepository             { return r.chat }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
