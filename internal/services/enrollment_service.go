package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewEnrollmentService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "classroom", Component: "enrollment"}),
		validator: validator,
	}
}

// Enroll adds studentID to the class. Enrolling twice returns the first row.
func (s *enrollmentService) Enroll(ctx context.Context, classID, studentID string) (enrollment *models.Enrollment, created bool, err error) {
	op := s.ops.WithOperation(ctx, "enrollment.create", studentID)
	defer func() { op.LogResult(classID, "class", err) }()

	if strings.TrimSpace(classID) == "" {
		return nil, false, invalid("classId", "is required", classID)
	}
	if _, err := loadClass(ctx, s.repo, classID); err != nil {
		return nil, false, err
	}

	enrollment = &models.Enrollment{ClassID: classID, StudentID: studentID}
	created, err = s.repo.Enrollment().CreateIfAbsent(ctx, nil, enrollment)
	if err != nil {
		return nil, false, fmt.Errorf("failed to enroll: %w", err)
	}

	s.metrics.Enrollment(created)
	if created {
		s.logger.Info("Student enrolled", "class_id", classID, "student_id", studentID)
		publishEvent(ctx, s.publisher, s.logger, events.NewEnrollmentCreatedEvent(enrollment.ID, classID, studentID))
	}
	return enrollment, created, nil
}

// ListByClass is the class roster, visible to the owner and admins
func (s *enrollmentService) ListByClass(ctx context.Context, classID, callerID string) ([]*models.Enrollment, error) {
	if _, _, err := requireClassManager(ctx, s.repo, classID, callerID, "list_enrollments"); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListByClass(ctx, nil, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// MarkAttendance flags an existing enrollment as attended. Students may mark
// themselves; marking someone else takes the class owner or an admin.
func (s *enrollmentService) MarkAttendance(ctx context.Context, req *MarkAttendanceRequest, callerID string) (enrollment *models.Enrollment, err error) {
	op := s.ops.WithOperation(ctx, "enrollment.mark_attendance", callerID)
	defer func() { op.LogResult(req.ClassID, "class", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		studentID = callerID
	}

	if studentID != callerID {
		if _, _, err := requireClassManager(ctx, s.repo, req.ClassID, callerID, "mark_attendance"); err != nil {
			return nil, err
		}
	}

	enrollment, err = s.repo.Enrollment().MarkAttended(ctx, nil, req.ClassID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	s.metrics.AttendanceMarked()
	publishEvent(ctx, s.publisher, s.logger, events.NewAttendanceMarkedEvent(req.ClassID, studentID, callerID))
	return enrollment, nil
}
