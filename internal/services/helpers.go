package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
)

// ===== SHARED LOOKUPS =====

// loadCaller resolves the signed-in user; a vanished account counts as signed out
func loadCaller(ctx context.Context, repo repositories.Repository, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	user, err := repo.User().GetByID(ctx, nil, callerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	return user, nil
}

func loadClass(ctx context.Context, repo repositories.Repository, classID string) (*models.Class, error) {
	class, err := repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return class, nil
}

// canManageClass reports whether user owns the class or is an admin
func canManageClass(class *models.Class, user *models.User) bool {
	return user.Role == models.RoleAdmin || class.IsOwnedBy(user.ID)
}

// requireClassManager loads the class and checks the caller may manage it
func requireClassManager(ctx context.Context, repo repositories.Repository, classID, callerID, action string) (*models.Class, *models.User, error) {
	class, err := loadClass(ctx, repo, classID)
	if err != nil {
		return nil, nil, err
	}
	caller, err := loadCaller(ctx, repo, callerID)
	if err != nil {
		return nil, nil, err
	}
	if !canManageClass(class, caller) {
		return nil, nil, NewPermissionError(callerID, classID, "class", action, "not the class owner or an admin")
	}
	return class, caller, nil
}

// ===== EVENTS =====

// publishEvent never fails the caller; the write it describes is already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.ClassEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishClassEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}
