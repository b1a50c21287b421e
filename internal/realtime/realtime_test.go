package realtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroker_DeliversOnlyToClassSubscribers(t *testing.T) {
	broker := NewBroker(testLogger())
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, err := broker.Subscribe(ctx, "class-a")
	require.NoError(t, err)
	other, err := broker.Subscribe(ctx, "class-b")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, &models.ChatMessage{ID: "m1", ClassID: "class-a", Message: "hello"}))

	select {
	case msg := <-mine:
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "hello", msg.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case msg := <-other:
		t.Fatalf("unexpected delivery to other class: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_PublishWithoutSubscribers(t *testing.T) {
	broker := NewBroker(testLogger())
	defer broker.Close()

	err := broker.Publish(context.Background(), &models.ChatMessage{ID: "m1", ClassID: "empty"})
	assert.NoError(t, err)
}

func TestChatStreamer_PushesMessages(t *testing.T) {
	broker := NewBroker(testLogger())
	defer broker.Close()
	streamer := NewChatStreamer(broker, testLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = streamer.Serve(w, r, "class-a")
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, broker.Publish(context.Background(), &models.ChatMessage{
		ID:      "m1",
		ClassID: "class-a",
		UserID:  "u1",
		Message: "pushed",
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.ChatMessage
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "pushed", got.Message)
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://classroom.test/api/chat/1/ws", nil)
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "https://classroom.test")
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "https://evil.test")
	assert.False(t, sameOrigin(req))
}
