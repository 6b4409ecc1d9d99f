package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/persistence"
	"github.com/sanskruthi/fest-service/internal/repository"
	"github.com/sanskruthi/fest-service/internal/service"
)

func TestAttendanceLogWorker(t *testing.T) {
	db, err := persistence.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := repository.NewSQLiteAttendanceLogRepository(db.DB)

	dispatcher := events.NewInMemoryDispatcher()
	assert.Equal(t, []string{"attendance_log"}, Start(dispatcher, Deps{AttendanceLog: log}))

	ctx := context.Background()
	at := time.Date(2025, 5, 17, 9, 30, 0, 0, time.UTC)
	publish := func(typ events.EventType, offset time.Duration) {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{
			ID:        string(typ),
			Type:      typ,
			UserID:    "u-1",
			Actor:     events.Actor{Type: domain.SubjectTypeAdmin, ConsoleID: "desk-1"},
			Timestamp: at.Add(offset),
			Payload:   events.AttendancePayload{AttendanceID: "a-1", FullName: "Asha Rao", At: at},
		}))
	}
	publish(events.EventAttendeeCheckedIn, 0)
	publish(events.EventAttendeeCheckedOut, time.Hour)
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventBookingCreated, UserID: "u-1"}))

	entries, err := log.List(ctx, "u-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AttendanceCheckOut, entries[0].Action)
	assert.Equal(t, domain.AttendanceCheckIn, entries[1].Action)
	assert.Equal(t, "Asha Rao", entries[1].FullName)
	assert.Equal(t, "a-1", entries[1].AttendanceID)
	assert.Equal(t, "desk-1", entries[1].ConsoleID)
	assert.Equal(t, domain.SubjectTypeAdmin, entries[1].ActorType)

	others, err := log.List(ctx, "u-2", 10)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestStart(t *testing.T) {
	assert.Nil(t, Start(nil, Deps{}))

	dispatcher := events.NewInMemoryDispatcher()
	assert.Empty(t, Start(dispatcher, Deps{}))

	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{})
	started := Start(dispatcher, Deps{Notifications: notifications, Logger: zap.NewNop()})
	assert.Equal(t, []string{"notifications"}, started)
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventRegistrationCreated, UserID: "u-1"}))
}
