package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of classroom domain events
type EventType string

const (
	// Class lifecycle events
	EventClassScheduled EventType = "class.scheduled"
	EventClassLive      EventType = "class.live"
	EventClassEnded     EventType = "class.ended"
	EventClassCancelled EventType = "class.cancelled"

	// Enrollment events
	EventEnrollmentCreated EventType = "enrollment.created"
	EventAttendanceMarked  EventType = "attendance.marked"

	// Chat events
	EventChatMessageSent EventType = "chat.message_sent"
)

const (
	eventSource  = "classroom-service"
	eventVersion = "1.0"
)

// ClassEvent is the envelope for every event this service emits
type ClassEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Class event payloads

type ClassScheduledEvent struct {
	ClassID     string    `json:"class_id"`
	Title       string    `json:"title"`
	LecturerID  string    `json:"lecturer_id"`
	RoomCode    string    `json:"room_code"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"` // minutes
}

type ClassStatusChangedEvent struct {
	ClassID      string  `json:"class_id"`
	Title        string  `json:"title"`
	FromStatus   string  `json:"from_status"`
	ToStatus     string  `json:"to_status"`
	ChangedBy    string  `json:"changed_by"`
	RecordingURL *string `json:"recording_url,omitempty"`
}

// Enrollment event payloads

type EnrollmentCreatedEvent struct {
	EnrollmentID string `json:"enrollment_id"`
	ClassID      string `json:"class_id"`
	StudentID    string `json:"student_id"`
}

type AttendanceMarkedEvent struct {
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	MarkedBy  string `json:"marked_by"`
}

// Chat event payloads

type ChatMessageSentEvent struct {
	MessageID string    `json:"message_id"`
	ClassID   string    `json:"class_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusEventType maps a class status onto its lifecycle event
func StatusEventType(status string) EventType {
	return EventType("class." + status)
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *ClassEvent {
	return &ClassEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewClassScheduledEvent(classID, title, lecturerID, roomCode string, scheduledAt time.Time, duration int) *ClassEvent {
	return newEvent(EventClassScheduled, ClassScheduledEvent{
		ClassID:     classID,
		Title:       title,
		LecturerID:  lecturerID,
		RoomCode:    roomCode,
		ScheduledAt: scheduledAt,
		Duration:    duration,
	})
}

func NewClassStatusChangedEvent(classID, title, from, to, changedBy string, recordingURL *string) *ClassEvent {
	return newEvent(StatusEventType(to), ClassStatusChangedEvent{
		ClassID:      classID,
		Title:        title,
		FromStatus:   from,
		ToStatus:     to,
		ChangedBy:    changedBy,
		RecordingURL: recordingURL,
	})
}

func NewEnrollmentCreatedEvent(enrollmentID, classID, studentID string) *ClassEvent {
	return newEvent(EventEnrollmentCreated, EnrollmentCreatedEvent{
		EnrollmentID: enrollmentID,
		ClassID:      classID,
		StudentID:    studentID,
	})
}

func NewAttendanceMarkedEvent(classID, studentID, markedBy string) *ClassEvent {
	return newEvent(EventAttendanceMarked, AttendanceMarkedEvent{
		ClassID:   classID,
		StudentID: studentID,
		MarkedBy:  markedBy,
	})
}

func NewChatMessageSentEvent(messageID, classID, userID string, createdAt time.Time) *ClassEvent {
	return newEvent(EventChatMessageSent, ChatMessageSentEvent{
		MessageID: messageID,
		ClassID:   classID,
		UserID:    userID,
		CreatedAt: createdAt,
	})
}

// GenerateEventID returns a time-ordered unique event id
func GenerateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
