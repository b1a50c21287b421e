package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	// Login fails with ErrInvalidCredentials for an unknown email and for a wrong password alike
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)
	Authenticate(ctx context.Context, userID string) (*models.User, error)
	// SSOLoginURL is the provider sign-in page for a flow bound to state
	SSOLoginURL(state string) (string, error)
	LoginWithSSO(ctx context.Context, code, state string) (*models.User, error)
	SSOEnabled() bool
}

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, callerID string) (*models.Class, error)
	GetByID(ctx context.Context, id string) (*models.Class, error)
	GetByRoomCode(ctx context.Context, roomCode string) (*models.Class, error)
	ListByLecturer(ctx context.Context, lecturerID string) ([]*models.Class, error)
	ListUpcoming(ctx context.Context) ([]*models.Class, error)
	UpdateStatus(ctx context.Context, id string, req *UpdateClassStatusRequest, callerID string) (*models.Class, error)
	History(ctx context.Context, id string) ([]*models.ClassStatusChange, error)
}

type EnrollmentService interface {
	// Enroll is idempotent; created reports whether a new row was written
	Enroll(ctx context.Context, classID, studentID string) (enrollment *models.Enrollment, created bool, err error)
	ListByClass(ctx context.Context, classID, callerID string) ([]*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error)
	MarkAttendance(ctx context.Context, req *MarkAttendanceRequest, callerID string) (*models.Enrollment, error)
	ExportAttendance(ctx context.Context, classID, callerID string, format ExportFormat) (*AttendanceExport, error)
}

type ChatService interface {
	Send(ctx context.Context, req *SendMessageRequest, userID string) (*models.ChatMessage, error)
	List(ctx context.Context, classID string, query ChatQuery) ([]*models.ChatMessage, error)
}

type RecordingService interface {
	Create(ctx context.Context, req *CreateRecordingRequest, callerID string) (*models.Recording, error)
	ListByClass(ctx context.Context, classID string) ([]*models.Recording, error)
	ListAll(ctx context.Context, search RecordingSearch) ([]*models.Recording, error)
}

type UserService interface {
	List(ctx context.Context, callerID string) ([]*models.User, error)
	UpdateRole(ctx context.Context, targetID string, req *UpdateRoleRequest, callerID string) (*models.User, error)
}

// ===== REQUESTS =====

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,notblank,max=100"`
	LastName  string `json:"lastName" validate:"required,notblank,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateClassRequest struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	ScheduledAt *time.Time `json:"scheduledAt" validate:"required"`
	Duration    *int       `json:"duration" validate:"omitempty,min=15,max=240"`
}

type UpdateClassStatusRequest struct {
	Status       string  `json:"status" validate:"required,class_status"`
	RecordingURL *string `json:"recordingUrl" validate:"omitempty,url"`
}

type MarkAttendanceRequest struct {
	ClassID string `json:"classId" validate:"required"`
	// StudentID defaults to the caller
	StudentID string `json:"studentId"`
}

type SendMessageRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type CreateRecordingRequest struct {
	ClassID      string  `json:"classId" validate:"required"`
	Title        string  `json:"title" validate:"required,notblank,max=200"`
	URL          string  `json:"url" validate:"required,url"`
	Duration     *int    `json:"duration" validate:"omitempty,min=0"`
	ThumbnailURL *string `json:"thumbnailUrl" validate:"omitempty,url"`
}

// ChatQuery selects part of a class feed. After names the last message a client has seen
// and is the lossless polling cursor; Since keeps messages strictly newer than a timestamp.
type ChatQuery struct {
	Since *time.Time `json:"since"`
	After string     `json:"after"`
	Limit int        `json:"limit" validate:"omitempty,min=1,max=500"`
}

type RecordingSearch struct {
	Query  string `json:"q"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `json:"offset" validate:"omitempty,min=0"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// ===== EXPORT =====

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// AttendanceExport is a rendered attendance sheet ready to be served as a download
type AttendanceExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Class() ClassService
	Enrollment() EnrollmentService
	Chat() ChatService
	Recording() RecordingService
	User() UserService
}
