package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const subscriberBuffer = 64

// Broker fans chat messages out to the readers currently watching a class.
// Delivery is in-process and best effort; the chat log stays the source of truth.
type Broker struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: subscriberBuffer},
			watermill.NewSlogLogger(logger),
		),
		logger: logger,
	}
}

func chatTopic(classID string) string {
	return "chat." + classID
}

// Publish delivers msg to every subscriber of its class
func (b *Broker) Publish(ctx context.Context, msg *models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	wm := message.NewMessage(msg.ID, payload)
	wm.SetContext(ctx)
	if err := b.pubsub.Publish(chatTopic(msg.ClassID), wm); err != nil {
		return fmt.Errorf("failed to publish chat message: %w", err)
	}
	return nil
}

// Subscribe streams messages for classID until ctx is cancelled
func (b *Broker) Subscribe(ctx context.Context, classID string) (<-chan *models.ChatMessage, error) {
	in, err := b.pubsub.Subscribe(ctx, chatTopic(classID))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to chat: %w", err)
	}

	out := make(chan *models.ChatMessage, subscriberBuffer)
	go func() {
		defer close(out)
		for wm := range in {
			var msg models.ChatMessage
			if err := json.Unmarshal(wm.Payload, &msg); err != nil {
				b.logger.Warn("Dropping malformed chat message", "message_id", wm.UUID, "error", err)
				wm.Ack()
				continue
			}
			wm.Ack()

			select {
			case out <- &msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Broker) Close() error {
	return b.pubsub.Close()
}
