package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChatService_PreservesInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Operating Systems", time.Now().Add(time.Hour))

	notifier := &mockNotifier{}
	notifier.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc := NewChatService(f.repo, notifier, f.publisher, nil, f.logger, f.validator)

	texts := []string{"first", "second", "third", "fourth"}
	for i, text := range texts {
		author := student
		if i%2 == 0 {
			author = lecturer
		}
		msg, err := svc.Send(ctx, &SendMessageRequest{ClassID: class.ID, Message: "  " + text + " "}, author.ID)
		require.NoError(t, err)
		assert.Equal(t, text, msg.Message)
		require.NotNil(t, msg.User)
		assert.Equal(t, author.Email, msg.User.Email)
	}

	feed, err := svc.List(ctx, class.ID, ChatQuery{})
	require.NoError(t, err)
	require.Len(t, feed, len(texts))
	for i, msg := range feed {
		assert.Equal(t, texts[i], msg.Message)
		require.NotNil(t, msg.User)
	}

	notifier.AssertNumberOfCalls(t, "Publish", len(texts))
	assert.Contains(t, f.publisher.EventTypes(), events.EventChatMessageSent)
}

func TestChatService_Since(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	class := f.class(t, lecturer, "Operating Systems", time.Now().Add(time.Hour))
	svc := NewChatService(f.repo, nil, nil, nil, f.logger, f.validator)

	old := &models.ChatMessage{ClassID: class.ID, UserID: lecturer.ID, Message: "old", CreatedAt: time.Now().Add(-time.Hour).UTC()}
	require.NoError(t, f.repo.Chat().Create(ctx, nil, old))
	_, err := svc.Send(ctx, &SendMessageRequest{ClassID: class.ID, Message: "new"}, lecturer.ID)
	require.NoError(t, err)

	since := time.Now().Add(-time.Minute)
	feed, err := svc.List(ctx, class.ID, ChatQuery{Since: &since})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "new", feed[0].Message)
}

func TestChatService_AfterCursorKeepsTiedMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	student := f.user(t, "student@example.com", models.RoleStudent)
	class := f.class(t, lecturer, "Operating Systems", time.Now().Add(time.Hour))
	svc := NewChatService(f.repo, nil, nil, nil, f.logger, f.validator)

	first, err := svc.Send(ctx, &SendMessageRequest{ClassID: class.ID, Message: "first"}, lecturer.ID)
	require.NoError(t, err)

	feed, err := svc.List(ctx, class.ID, ChatQuery{After: first.ID})
	require.NoError(t, err)
	assert.Empty(t, feed)

	// same timestamp as the message the client already has
	tied := &models.ChatMessage{ClassID: class.ID, UserID: student.ID, Message: "tied", CreatedAt: first.CreatedAt}
	require.NoError(t, f.repo.Chat().Create(ctx, nil, tied))

	feed, err = svc.List(ctx, class.ID, ChatQuery{After: first.ID})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "tied", feed[0].Message)

	feed, err = svc.List(ctx, class.ID, ChatQuery{After: tied.ID})
	require.NoError(t, err)
	assert.Empty(t, feed)

	feed, err = svc.List(ctx, class.ID, ChatQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "first", feed[0].Message)
}

func TestChatService_ListRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	class := f.class(t, lecturer, "Operating Systems", time.Now().Add(time.Hour))
	other := f.class(t, lecturer, "Compilers", time.Now().Add(time.Hour))
	svc := NewChatService(f.repo, nil, nil, nil, f.logger, f.validator)

	elsewhere, err := svc.Send(ctx, &SendMessageRequest{ClassID: other.ID, Message: "elsewhere"}, lecturer.ID)
	require.NoError(t, err)

	_, err = svc.List(ctx, class.ID, ChatQuery{After: elsewhere.ID})
	assert.True(t, IsValidation(err))

	_, err = svc.List(ctx, class.ID, ChatQuery{After: "no-such-message"})
	assert.True(t, IsValidation(err))

	_, err = svc.List(ctx, class.ID, ChatQuery{Limit: 501})
	assert.True(t, IsValidation(err))
}

func TestChatService_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lecturer := f.user(t, "lecturer@example.com", models.RoleLecturer)
	class := f.class(t, lecturer, "Operating Systems", time.Now().Add(time.Hour))
	svc := NewChatService(f.repo, nil, nil, nil, f.logger, f.validator)

	_, err := svc.Send(ctx, &SendMessageRequest{ClassID: class.ID, Message: "   "}, lecturer.ID)
	assert.True(t, IsValidation(err))

	_, err = svc.Send(ctx, &SendMessageRequest{ClassID: class.ID, Message: strings.Repeat("x", models.MaxChatMessageLength+1)}, lecturer.ID)
	assert.True(t, IsValidation(err))

	_, err = svc.Send(ctx, &SendMessageRequest{ClassID: "missing", Message: "hello"}, lecturer.ID)
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.List(ctx, "missing", ChatQuery{})
	assert.ErrorIs(t, err, ErrClassNotFound)

	feed, err := svc.List(ctx, class.ID, ChatQuery{})
	require.NoError(t, err)
	assert.Empty(t, feed)
}
