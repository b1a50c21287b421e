package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// ChatNotifier fans a stored message out to live subscribers of its class
type ChatNotifier interface {
	Publish(ctx context.Context, message *models.ChatMessage) error
}

type chatService struct {
	repo      repositories.Repository
	notifier  ChatNotifier
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewChatService(
	repo repositories.Repository,
	notifier ChatNotifier,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) ChatService {
	return &chatService{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

func (s *chatService) Send(ctx context.Context, req *SendMessageRequest, userID string) (*models.ChatMessage, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Message) > models.MaxChatMessageLength {
		return nil, invalid("message", fmt.Sprintf("must be at most %d characters", models.MaxChatMessageLength), "")
	}

	author, err := loadCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if _, err := loadClass(ctx, s.repo, req.ClassID); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ClassID: req.ClassID,
		UserID:  userID,
		Message: req.Message,
	}
	if err := s.repo.Chat().Create(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}
	message.User = author

	s.metrics.ChatMessage()
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, message); err != nil {
			s.logger.Warn("Failed to push chat message", "class_id", message.ClassID, "message_id", message.ID, "error", err)
		}
	}
	publishEvent(ctx, s.publisher, s.logger, events.NewChatMessageSentEvent(message.ID, message.ClassID, userID, message.CreatedAt))

	return message, nil
}

// List returns the class feed oldest first
func (s *chatService) List(ctx context.Context, classID string, query ChatQuery) ([]*models.ChatMessage, error) {
	if err := s.validator.Validate(&query); err != nil {
		return nil, err
	}
	if _, err := loadClass(ctx, s.repo, classID); err != nil {
		return nil, err
	}

	filters := repositories.ChatFilters{Limit: query.Limit}
	if query.Since != nil {
		utc := query.Since.UTC()
		filters.Since = &utc
	}
	if after := strings.TrimSpace(query.After); after != "" {
		cursor, err := s.repo.Chat().GetByID(ctx, nil, after)
		if repositories.IsNotFoundError(err) || (err == nil && cursor.ClassID != classID) {
			return nil, invalid("after", "must be the id of a message in this class", after)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load chat cursor: %w", err)
		}
		filters.After = &repositories.ChatCursor{CreatedAt: cursor.CreatedAt, ID: cursor.ID}
	}

	messages, err := s.repo.Chat().ListByClass(ctx, nil, classID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}
