package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxChatMessageLength = 2000

type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	ClassID   string    `json:"classId" gorm:"not null;size:64;index:idx_chat_messages_class_created,priority:1"`
	UserID    string    `json:"userId" gorm:"not null;size:64"`
	Message   string    `json:"message" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_chat_messages_class_created,priority:2"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// BeforeCreate assigns a time-ordered id so (created_at, id) keeps insertion order
// even when two messages share a timestamp.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id.String()
	}
	return nil
}
