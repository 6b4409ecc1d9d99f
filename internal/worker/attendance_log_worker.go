package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/repository"
)

// subscribeAttendanceLog records every check-in and check-out published on
// the dispatcher in the attendance log.
func subscribeAttendanceLog(dispatcher events.Dispatcher, log repository.AttendanceLogRepository, logger *zap.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		entry := attendanceLogEntry(event)
		if err := log.Append(context.WithoutCancel(ctx), &entry); err != nil {
			logger.Error("append attendance log",
				zap.String("user_id", event.UserID),
				zap.String("action", string(entry.Action)),
				zap.Error(err))
			return fmt.Errorf("append attendance log: %w", err)
		}
		return nil
	}
	dispatcher.Subscribe(events.EventAttendeeCheckedIn, handler)
	dispatcher.Subscribe(events.EventAttendeeCheckedOut, handler)
}

func attendanceLogEntry(event events.Event) domain.AttendanceLogEntry {
	entry := domain.AttendanceLogEntry{
		UserID:    event.UserID,
		Action:    domain.AttendanceCheckIn,
		ActorType: event.Actor.Type,
		ConsoleID: event.Actor.ConsoleID,
		CreatedAt: event.Timestamp,
	}
	if event.Type == events.EventAttendeeCheckedOut {
		entry.Action = domain.AttendanceCheckOut
	}
	if payload, ok := event.Payload.(events.AttendancePayload); ok {
		entry.AttendanceID = payload.AttendanceID
		entry.FullName = payload.FullName
	}
	return entry
}
