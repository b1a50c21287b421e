package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/database"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

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
	return db
}

func seedUser(t *testing.T, repo repositories.Repository, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, FirstName: "Test", LastName: "User", Role: role}
	require.NoError(t, repo.User().Create(context.Background(), nil, user))
	return user
}

func seedClass(t *testing.T, repo repositories.Repository, lecturerID, roomCode string, at time.Time) *models.Class {
	t.Helper()
	class := &models.Class{
		Title:       "Class " + roomCode,
		LecturerID:  lecturerID,
		ScheduledAt: at,
		RoomCode:    roomCode,
	}
	require.NoError(t, repo.Class().Create(context.Background(), nil, class))
	return class
}

// ===== USERS =====

func TestUserRepository_EmailIsUniqueAndNormalized(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user := seedUser(t, repo, "  Alice@Example.com ", models.RoleStudent)
	assert.Equal(t, "alice@example.com", user.Email)

	found, err := repo.User().GetByEmail(ctx, nil, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.User().Create(ctx, nil, &models.User{Email: "alice@example.com"})
	assert.True(t, repositories.IsDuplicateError(err))
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.User().GetByID(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_UpsertKeepsRole(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user := seedUser(t, repo, "bob@example.com", models.RoleLecturer)

	refreshed := &models.User{ID: user.ID, Email: "bob@example.com", FirstName: "Robert", Role: models.RoleStudent}
	require.NoError(t, repo.User().Upsert(ctx, nil, refreshed))

	assert.Equal(t, "Robert", refreshed.FirstName)
	assert.Equal(t, models.RoleLecturer, refreshed.Role)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user := seedUser(t, repo, "carol@example.com", models.RoleStudent)

	updated, err := repo.User().UpdateRole(ctx, nil, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = repo.User().UpdateRole(ctx, nil, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

// ===== CLASSES =====

func TestClassRepository_RoomCodeIsUnique(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)

	seedClass(t, repo, lecturer.ID, "ABCD1234", time.Now().Add(time.Hour))

	exists, err := repo.Class().ExistsByRoomCode(ctx, nil, "ABCD1234")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Class().Create(ctx, nil, &models.Class{
		Title:       "Clash",
		LecturerID:  lecturer.ID,
		ScheduledAt: time.Now(),
		RoomCode:    "ABCD1234",
	})
	assert.True(t, repositories.IsDuplicateError(err))
}

func TestClassRepository_Defaults(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)

	class := seedClass(t, repo, lecturer.ID, "DEFAULTS", time.Now())

	assert.NotEmpty(t, class.ID)
	assert.Equal(t, models.ClassScheduled, class.Status)
	assert.Equal(t, models.DefaultClassDuration, class.Duration)
}

func TestClassRepository_Ordering(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	now := time.Now()

	early := seedClass(t, repo, lecturer.ID, "EARLY001", now.Add(time.Hour))
	late := seedClass(t, repo, lecturer.ID, "LATE0001", now.Add(48*time.Hour))

	mine, err := repo.Class().ListByLecturer(ctx, nil, lecturer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, late.ID, mine[0].ID)
	assert.Equal(t, early.ID, mine[1].ID)

	upcoming, err := repo.Class().ListByStatus(ctx, nil, models.ClassScheduled)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, early.ID, upcoming[0].ID)
}

func TestClassRepository_TransitionIsConditional(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	class := seedClass(t, repo, lecturer.ID, "TRANS001", time.Now())

	ok, err := repo.Class().TransitionStatus(ctx, nil, class.ID, models.ClassScheduled, models.ClassLive, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second writer still believing the class is scheduled loses
	ok, err = repo.Class().TransitionStatus(ctx, nil, class.ID, models.ClassScheduled, models.ClassCancelled, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	url := "https://cdn.example.com/rec.mp4"
	ok, err = repo.Class().TransitionStatus(ctx, nil, class.ID, models.ClassLive, models.ClassEnded, &url)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.Class().GetByID(ctx, nil, class.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClassEnded, stored.Status)
	require.NotNil(t, stored.RecordingURL)
	assert.Equal(t, url, *stored.RecordingURL)
}

func TestClassRepository_StatusHistory(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	class := seedClass(t, repo, lecturer.ID, "HIST0001", time.Now())

	require.NoError(t, repo.Class().AddStatusChange(ctx, nil, &models.ClassStatusChange{
		ClassID: class.ID, FromStatus: models.ClassScheduled, ToStatus: models.ClassLive, ChangedBy: lecturer.ID,
	}))
	require.NoError(t, repo.Class().AddStatusChange(ctx, nil, &models.ClassStatusChange{
		ClassID: class.ID, FromStatus: models.ClassLive, ToStatus: models.ClassEnded, ChangedBy: lecturer.ID,
	}))

	history, err := repo.Class().GetStatusHistory(ctx, nil, class.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ClassLive, history[0].ToStatus)
	assert.Equal(t, models.ClassEnded, history[1].ToStatus)
}

// ===== ENROLLMENTS =====

func TestEnrollmentRepository_CreateIfAbsentIsIdempotent(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	student := seedUser(t, repo, "stu@example.com", models.RoleStudent)
	class := seedClass(t, repo, lecturer.ID, "ENROLL01", time.Now())

	first := &models.Enrollment{ClassID: class.ID, StudentID: student.ID}
	created, err := repo.Enrollment().CreateIfAbsent(ctx, nil, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &models.Enrollment{ClassID: class.ID, StudentID: student.ID}
	created, err = repo.Enrollment().CreateIfAbsent(ctx, nil, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	roster, err := repo.Enrollment().ListByClass(ctx, nil, class.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.NotNil(t, roster[0].Student)
	assert.Equal(t, student.Email, roster[0].Student.Email)
}

func TestEnrollmentRepository_MarkAttended(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	student := seedUser(t, repo, "stu@example.com", models.RoleStudent)
	class := seedClass(t, repo, lecturer.ID, "ATTEND01", time.Now())

	_, err := repo.Enrollment().MarkAttended(ctx, nil, class.ID, student.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// marking must never create the enrollment
	_, err = repo.Enrollment().GetByClassAndStudent(ctx, nil, class.ID, student.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.Enrollment().CreateIfAbsent(ctx, nil, &models.Enrollment{ClassID: class.ID, StudentID: student.ID})
	require.NoError(t, err)

	enrollment, err := repo.Enrollment().MarkAttended(ctx, nil, class.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.Attended)

	// repeat marking stays true
	enrollment, err = repo.Enrollment().MarkAttended(ctx, nil, class.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.Attended)
}

func TestEnrollmentRepository_ListByStudent(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	student := seedUser(t, repo, "stu@example.com", models.RoleStudent)
	other := seedUser(t, repo, "other@example.com", models.RoleStudent)
	a := seedClass(t, repo, lecturer.ID, "CLASSAAA", time.Now())
	b := seedClass(t, repo, lecturer.ID, "CLASSBBB", time.Now())

	for _, e := range []*models.Enrollment{
		{ClassID: a.ID, StudentID: student.ID},
		{ClassID: b.ID, StudentID: student.ID},
		{ClassID: a.ID, StudentID: other.ID},
	} {
		_, err := repo.Enrollment().CreateIfAbsent(ctx, nil, e)
		require.NoError(t, err)
	}

	mine, err := repo.Enrollment().ListByStudent(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

// ===== RECORDINGS =====

func TestRecordingRepository_ListFilters(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	a := seedClass(t, repo, lecturer.ID, "RECAAAAA", time.Now())
	b := seedClass(t, repo, lecturer.ID, "RECBBBBB", time.Now())

	base := time.Now().Add(-time.Hour)
	for i, r := range []*models.Recording{
		{ClassID: a.ID, Title: "Intro to Go", URL: "https://cdn.example.com/1.mp4"},
		{ClassID: a.ID, Title: "Concurrency 100%", URL: "https://cdn.example.com/2.mp4"},
		{ClassID: b.ID, Title: "Advanced GO", URL: "https://cdn.example.com/3.mp4"},
	} {
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Recording().Create(ctx, nil, r))
	}

	all, err := repo.Recording().List(ctx, nil, repositories.RecordingFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Advanced GO", all[0].Title)

	byClass, err := repo.Recording().ListByClass(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Len(t, byClass, 2)

	matched, err := repo.Recording().List(ctx, nil, repositories.RecordingFilters{Query: "go"})
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	literal, err := repo.Recording().List(ctx, nil, repositories.RecordingFilters{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "Concurrency 100%", literal[0].Title)

	page, err := repo.Recording().List(ctx, nil, repositories.RecordingFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Concurrency 100%", page[0].Title)
}

// ===== CHAT =====

func TestChatRepository_OrderAndSince(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	class := seedClass(t, repo, lecturer.ID, "CHAT0001", time.Now())

	base := time.Now().Add(-time.Minute).UTC()
	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		require.NoError(t, repo.Chat().Create(ctx, nil, &models.ChatMessage{
			ClassID:   class.ID,
			UserID:    lecturer.ID,
			Message:   text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	messages, err := repo.Chat().ListByClass(ctx, nil, class.ID, repositories.ChatFilters{})
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, text := range texts {
		assert.Equal(t, text, messages[i].Message)
	}
	require.NotNil(t, messages[0].User)
	assert.Equal(t, lecturer.Email, messages[0].User.Email)

	since := messages[0].CreatedAt
	newer, err := repo.Chat().ListByClass(ctx, nil, class.ID, repositories.ChatFilters{Since: &since})
	require.NoError(t, err)
	require.Len(t, newer, 2)
	assert.Equal(t, "second", newer[0].Message)

	empty, err := repo.Chat().ListByClass(ctx, nil, "other-class", repositories.ChatFilters{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatRepository_CursorKeepsTiedTimestamps(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	lecturer := seedUser(t, repo, "lec@example.com", models.RoleLecturer)
	class := seedClass(t, repo, lecturer.ID, "CHAT0002", time.Now())

	at := time.Now().Add(-time.Minute).UTC()
	first := &models.ChatMessage{ID: "msg-a", ClassID: class.ID, UserID: lecturer.ID, Message: "first", CreatedAt: at}
	require.NoError(t, repo.Chat().Create(ctx, nil, first))

	seen, err := repo.Chat().GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	cursor := &repositories.ChatCursor{CreatedAt: seen.CreatedAt, ID: seen.ID}

	none, err := repo.Chat().ListByClass(ctx, nil, class.ID, repositories.ChatFilters{After: cursor})
	require.NoError(t, err)
	assert.Empty(t, none)

	second := &models.ChatMessage{ID: "msg-b", ClassID: class.ID, UserID: lecturer.ID, Message: "second", CreatedAt: at}
	require.NoError(t, repo.Chat().Create(ctx, nil, second))
	third := &models.ChatMessage{ID: "msg-c", ClassID: class.ID, UserID: lecturer.ID, Message: "third", CreatedAt: at.Add(time.Second)}
	require.NoError(t, repo.Chat().Create(ctx, nil, third))

	newer, err := repo.Chat().ListByClass(ctx, nil, class.ID, repositories.ChatFilters{After: cursor})
	require.NoError(t, err)
	require.Len(t, newer, 2)
	assert.Equal(t, "second", newer[0].Message)
	assert.Equal(t, "third", newer[1].Message)

	limited, err := repo.Chat().ListByClass(ctx, nil, class.ID, repositories.ChatFilters{After: cursor, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "second", limited[0].Message)

	_, err = repo.Chat().GetByID(ctx, nil, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := repo.User().Create(ctx, tx, &models.User{Email: "tx@example.com"}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	_, err = repo.User().GetByEmail(ctx, nil, "tx@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
