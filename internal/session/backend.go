package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by a Backend when the id is unknown or expired
var ErrSessionNotFound = errors.New("session not found")

// Backend persists serialized session values by id
type Backend interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// ===== REDIS =====

type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client, prefix: "session:"}
}

func (b *RedisBackend) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+id, data, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.client.Del(ctx, b.prefix+id).Err()
}

// ===== MEMORY =====

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// MemoryBackend keeps sessions in process memory. Sessions do not survive restarts.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Load(ctx context.Context, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !record.expiresAt.IsZero() && b.now().After(record.expiresAt) {
		delete(b.records, id)
		return nil, ErrSessionNotFound
	}
	return record.data, nil
}

func (b *MemoryBackend) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	record := memoryRecord{data: append([]byte(nil), data...)}
	if ttl > 0 {
		record.expiresAt = b.now().Add(ttl)
	}

	b.mu.Lock()
	b.records[id] = record
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	delete(b.records, id)
	b.mu.Unlock()
	return nil
}

// Len reports how many sessions are stored, expired ones included
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
