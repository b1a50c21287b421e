package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type recordingService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewRecordingService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) RecordingService {
	return &recordingService{
		repo:      repo,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "classroom", Component: "recording"}),
		validator: validator,
	}
}

// Create catalogs a recording for a class the caller manages
func (s *recordingService) Create(ctx context.Context, req *CreateRecordingRequest, callerID string) (recording *models.Recording, err error) {
	op := s.ops.WithOperation(ctx, "recording.create", callerID)
	defer func() { op.LogResult(req.ClassID, "class", err) }()

	req.URL = strings.TrimSpace(req.URL)
	req.ThumbnailURL = normalizeRecordingURL(req.ThumbnailURL)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, _, err := requireClassManager(ctx, s.repo, req.ClassID, callerID, "add_recording"); err != nil {
		return nil, err
	}

	recording = &models.Recording{
		ClassID:      req.ClassID,
		Title:        strings.TrimSpace(req.Title),
		URL:          req.URL,
		Duration:     req.Duration,
		ThumbnailURL: req.ThumbnailURL,
	}
	if err := s.repo.Recording().Create(ctx, nil, recording); err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	s.logger.Info("Recording cataloged", "recording_id", recording.ID, "class_id", recording.ClassID)
	return recording, nil
}

func (s *recordingService) ListByClass(ctx context.Context, classID string) ([]*models.Recording, error) {
	if _, err := loadClass(ctx, s.repo, classID); err != nil {
		return nil, err
	}

	recordings, err := s.repo.Recording().ListByClass(ctx, nil, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return recordings, nil
}

// ListAll searches the whole catalog by title; an empty query lists everything
func (s *recordingService) ListAll(ctx context.Context, search RecordingSearch) ([]*models.Recording, error) {
	if err := s.validator.Validate(&search); err != nil {
		return nil, err
	}

	recordings, err := s.repo.Recording().List(ctx, nil, repositories.RecordingFilters{
		Query:  strings.TrimSpace(search.Query),
		Limit:  search.Limit,
		Offset: search.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return recordings, nil
}
