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

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "classroom", Component: "user"}),
		validator: validator,
	}
}

func (s *userService) List(ctx context.Context, callerID string) ([]*models.User, error) {
	if err := s.requireAdmin(ctx, callerID, "list"); err != nil {
		return nil, err
	}

	users, err := s.repo.User().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateRole(ctx context.Context, targetID string, req *UpdateRoleRequest, callerID string) (user *models.User, err error) {
	op := s.ops.WithOperation(ctx, "user.update_role", callerID)
	defer func() { op.LogResult(targetID, "user", err) }()

	if err := s.requireAdmin(ctx, callerID, "update_role"); err != nil {
		return nil, err
	}

	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err = s.repo.User().UpdateRole(ctx, nil, targetID, models.UserRole(req.Role))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.ops.LogSecurityEvent(ctx, SecurityEvent{
		Type:        SecurityEventRoleChange,
		UserID:      callerID,
		Description: "user role changed",
		Metadata:    map[string]interface{}{"target_id": targetID, "role": req.Role},
	})
	return user, nil
}

func (s *userService) requireAdmin(ctx context.Context, callerID, action string) error {
	caller, err := loadCaller(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if caller.Role != models.RoleAdmin {
		return NewPermissionError(callerID, "", "user", action, "admin role required")
	}
	return nil
}
