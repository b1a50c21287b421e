package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/database"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		repo:      postgres.NewRepository(db),
		cache:     cache.NewMemoryCache(),
		publisher: events.NewMockEventPublisher(log),
		logger:    log,
		validator: validator.New(),
	}
}

func (f *fixture) classService() *classService {
	return NewClassService(f.repo, f.cache, f.publisher, nil, f.logger, f.validator).(*classService)
}

func (f *fixture) enrollmentService() EnrollmentService {
	return NewEnrollmentService(f.repo, f.publisher, nil, f.logger, f.validator)
}

func (f *fixture) authService() *authService {
	return newAuthService(f.repo, nil, f.logger, f.validator, 4)
}

func (f *fixture) user(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, FirstName: "Test", LastName: strings.Split(email, "@")[0], Role: role}
	require.NoError(t, f.repo.User().Create(context.Background(), nil, user))
	return user
}

func (f *fixture) class(t *testing.T, lecturer *models.User, title string, at time.Time) *models.Class {
	t.Helper()
	duration := 45
	class, err := f.classService().Create(context.Background(), &CreateClassRequest{
		Title:       title,
		ScheduledAt: &at,
		Duration:    &duration,
	}, lecturer.ID)
	require.NoError(t, err)
	return class
}

func strPtr(s string) *string { return &s }

// ===== MOCKS =====

// mockClassRepository overrides the room-code calls and defers the rest to a real store
type mockClassRepository struct {
	mock.Mock
	repositories.ClassRepository
}

func (m *mockClassRepository) ExistsByRoomCode(ctx context.Context, tx *gorm.DB, roomCode string) (bool, error) {
	args := m.Called(ctx, tx, roomCode)
	return args.Bool(0), args.Error(1)
}

func (m *mockClassRepository) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	args := m.Called(ctx, tx, class)
	return args.Error(0)
}

type repositoryWithClasses struct {
	repositories.Repository
	classes repositories.ClassRepository
}

func (r *repositoryWithClasses) Class() repositories.ClassRepository { return r.classes }

// gatedClassRepository parks the first ListByStatus call after its read until release is closed
type gatedClassRepository struct {
	repositories.ClassRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func newGatedClassRepository(inner repositories.ClassRepository) *gatedClassRepository {
	return &gatedClassRepository{
		ClassRepository: inner,
		loaded:          make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedClassRepository) ListByStatus(ctx context.Context, tx *gorm.DB, status models.ClassStatus) ([]*models.Class, error) {
	classes, err := g.ClassRepository.ListByStatus(ctx, tx, status)
	g.once.Do(func() {
		close(g.loaded)
		<-g.release
	})
	return classes, err
}

// mockNotifier records chat pushes
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
