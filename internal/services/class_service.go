package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"gorm.io/gorm"
)

const (
	// upcoming lists are stored under classes:upcoming:<generation>; every status change
	// moves the generation so a list read before the change is never served after it
	upcomingCachePrefix   = "classes:upcoming:"
	upcomingGenerationKey = "classes:upcoming-generation"
	upcomingCacheTTL      = 30 * time.Second
	maxRoomCodeAttempts = 5
)

type classService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator

	newRoomCode func() string
}

func NewClassService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) ClassService {
	return &classService{
		repo:        repo,
		cache:       cacheService,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
		ops:         NewServiceLogger(logger, LogConfig{Service: "classroom", Component: "class"}),
		validator:   validator,
		newRoomCode: GenerateRoomCode,
	}
}

// ===== CORE OPERATIONS =====

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, callerID string) (class *models.Class, err error) {
	op := s.ops.WithOperation(ctx, "class.create", callerID)
	defer func() { op.LogResult(classIDOf(class), "class", err) }()

	caller, err := loadCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanTeach() {
		return nil, NewPermissionError(callerID, "", "class", "create", "only lecturers and admins can create classes")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	duration := models.DefaultClassDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	class = &models.Class{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		LecturerID:  callerID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Duration:    duration,
		Status:      models.ClassScheduled,
	}

	if err := s.insertWithRoomCode(ctx, class); err != nil {
		return nil, err
	}

	s.logger.Info("Class scheduled", "class_id", class.ID, "room_code", class.RoomCode, "lecturer_id", callerID)

	s.invalidateUpcoming(ctx)
	publishEvent(ctx, s.publisher, s.logger, events.NewClassScheduledEvent(
		class.ID, class.Title, class.LecturerID, class.RoomCode, class.ScheduledAt, class.Duration))

	return class, nil
}

func (s *classService) GetByID(ctx context.Context, id string) (*models.Class, error) {
	return loadClass(ctx, s.repo, id)
}

// GetByRoomCode matches case-insensitively; codes are stored upper-case
func (s *classService) GetByRoomCode(ctx context.Context, roomCode string) (*models.Class, error) {
	code := strings.ToUpper(strings.TrimSpace(roomCode))
	if code == "" {
		return nil, ErrClassNotFound
	}

	class, err := s.repo.Class().GetByRoomCode(ctx, nil, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class by room code: %w", err)
	}
	return class, nil
}

func (s *classService) ListByLecturer(ctx context.Context, lecturerID string) ([]*models.Class, error) {
	classes, err := s.repo.Class().ListByLecturer(ctx, nil, lecturerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lecturer classes: %w", err)
	}
	return classes, nil
}

// ListUpcoming returns scheduled classes only, soonest first
func (s *classService) ListUpcoming(ctx context.Context) ([]*models.Class, error) {
	key, cacheable := s.upcomingCacheKey(ctx)

	var classes []*models.Class
	if cacheable {
		if err := s.cache.Get(ctx, key, &classes); err == nil {
			return classes, nil
		}
	}

	classes, err := s.repo.Class().ListByStatus(ctx, nil, models.ClassScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming classes: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, classes, upcomingCacheTTL); err != nil {
			s.logger.Warn("Failed to cache upcoming classes", "error", err)
		}
	}
	return classes, nil
}

// UpdateStatus moves a class along one legal lifecycle edge
func (s *classService) UpdateStatus(ctx context.Context, id string, req *UpdateClassStatusRequest, callerID string) (class *models.Class, err error) {
	op := s.ops.WithOperation(ctx, "class.update_status", callerID)
	defer func() { op.LogResult(id, "class", err) }()

	to, err := models.ParseClassStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return nil, invalid("status", "must be a valid class status (scheduled, live, ended, cancelled)", req.Status)
	}
	req.Status = string(to)
	req.RecordingURL = normalizeRecordingURL(req.RecordingURL)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	current, _, err := requireClassManager(ctx, s.repo, id, callerID, "update_status")
	if err != nil {
		return nil, err
	}

	from := current.Status
	if !from.CanTransitionTo(to) {
		return nil, NewTransitionError(id, from, to)
	}

	recordingURL := req.RecordingURL
	if recordingURL != nil && to != models.ClassEnded {
		return nil, invalid("recordingUrl", "is only accepted when ending a class", *recordingURL)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		applied, err := s.repo.Class().TransitionStatus(ctx, tx, id, from, to, recordingURL)
		if err != nil {
			return fmt.Errorf("failed to update class status: %w", err)
		}
		if !applied {
			// another request moved the class first, so from is stale
			return &TransitionError{ClassID: id, From: string(from), To: string(to)}
		}

		change := &models.ClassStatusChange{
			ClassID:    id,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  callerID,
			Metadata:   transitionMetadata(recordingURL),
		}
		if err := s.repo.Class().AddStatusChange(ctx, tx, change); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}

		if recordingURL != nil {
			seconds := current.Duration * 60
			recording := &models.Recording{
				ClassID:  id,
				Title:    current.Title,
				URL:      *recordingURL,
				Duration: &seconds,
			}
			if err := s.repo.Recording().Create(ctx, tx, recording); err != nil {
				return fmt.Errorf("failed to catalog recording: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class status changed", "class_id", id, "from", from, "to", to, "changed_by", callerID)

	s.metrics.ClassTransition(string(from), string(to))
	s.invalidateUpcoming(ctx)
	publishEvent(ctx, s.publisher, s.logger, events.NewClassStatusChangedEvent(
		id, current.Title, string(from), string(to), callerID, recordingURL))

	return loadClass(ctx, s.repo, id)
}

// History lists the class's status changes, oldest first
func (s *classService) History(ctx context.Context, id string) ([]*models.ClassStatusChange, error) {
	if _, err := loadClass(ctx, s.repo, id); err != nil {
		return nil, err
	}

	changes, err := s.repo.Class().GetStatusHistory(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	return changes, nil
}
