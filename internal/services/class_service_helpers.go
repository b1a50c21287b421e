package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GenerateRoomCode returns RoomCodeLength upper-case hex characters taken from a random UUID
func GenerateRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:models.RoomCodeLength])
}

// insertWithRoomCode assigns a room code not yet in use and inserts the class.
// A collision, seen either up front or as a unique violation on insert, draws a new code.
func (s *classService) insertWithRoomCode(ctx context.Context, class *models.Class) error {
	for attempt := 1; attempt <= maxRoomCodeAttempts; attempt++ {
		code := s.newRoomCode()

		taken, err := s.repo.Class().ExistsByRoomCode(ctx, nil, code)
		if err != nil {
			return fmt.Errorf("failed to check room code: %w", err)
		}
		if taken {
			s.logger.Warn("Room code collision, regenerating", "room_code", code, "attempt", attempt)
			continue
		}

		class.RoomCode = code
		err = s.repo.Class().Create(ctx, nil, class)
		if err == nil {
			return nil
		}
		if !repositories.IsDuplicateError(err) {
			return fmt.Errorf("failed to create class: %w", err)
		}
		s.logger.Warn("Room code taken at insert, regenerating", "room_code", code, "attempt", attempt)
	}
	return ErrRoomCodeExhausted
}

// upcomingCacheKey names the entry for the current generation; read it before querying
func (s *classService) upcomingCacheKey(ctx context.Context) (string, bool) {
	var generation string
	err := s.cache.Get(ctx, upcomingGenerationKey, &generation)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrCacheMiss):
		generation = "0"
	default:
		s.logger.Warn("Failed to read upcoming classes generation", "error", err)
		return "", false
	}
	return upcomingCachePrefix + generation, true
}

func (s *classService) invalidateUpcoming(ctx context.Context) {
	if err := s.cache.Set(ctx, upcomingGenerationKey, uuid.NewString(), 0); err != nil {
		s.logger.Error("Failed to advance upcoming classes generation", "error", err)
	}
	if err := s.cache.DeletePattern(ctx, upcomingCachePrefix+"*"); err != nil {
		s.logger.Warn("Failed to evict upcoming classes cache", "error", err)
	}
}

func normalizeRecordingURL(url *string) *string {
	if url == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*url)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func transitionMetadata(recordingURL *string) datatypes.JSON {
	if recordingURL == nil {
		return nil
	}
	raw, err := json.Marshal(map[string]string{"recordingUrl": *recordingURL})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func classIDOf(class *models.Class) string {
	if class == nil {
		return ""
	}
	return class.ID
}
