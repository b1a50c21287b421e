package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/events"
)

// Consumers downstream of the Kafka topic see the same envelope the mock records.
func ExampleMockEventPublisher() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	defer publisher.Close()

	ctx := context.Background()
	recordingURL := "https://media.example.com/intro.mp4"
	_ = publisher.PublishClassEvent(ctx, events.NewClassStatusChangedEvent("class-1", "Intro", "scheduled", "live", "lecturer-1", nil))
	_ = publisher.PublishClassEvent(ctx, events.NewAttendanceMarkedEvent("class-1", "student-1", "student-1"))
	_ = publisher.PublishClassEvent(ctx, events.NewClassStatusChangedEvent("class-1", "Intro", "live", "ended", "lecturer-1", &recordingURL))

	for _, eventType := range publisher.EventTypes() {
		fmt.Println(eventType)
	}
	// Output:
	// class.live
	// attendance.marked
	// class.ended
}

func ExampleNewAttendanceMarkedEvent() {
	event := events.NewAttendanceMarkedEvent("class-1", "student-1", "lecturer-1")

	payload, _ := json.Marshal(event.Data)
	fmt.Println(event.Source, event.Type)
	fmt.Println(string(payload))
	// Output:
	// classroom-service attendance.marked
	// {"class_id":"class-1","student_id":"student-1","marked_by":"lecturer-1"}
}
