// Package worker subscribes background consumers to domain events.
package worker

import (
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/repository"
	"github.com/sanskruthi/fest-service/internal/service"
)

// Deps lists the consumers to attach. Nil members are skipped.
type Deps struct {
	Notifications *service.NotificationService
	AttendanceLog repository.AttendanceLogRepository
	Logger        *zap.Logger
}

// Start attaches the configured consumers to dispatcher and reports which
// ones were started.
func Start(dispatcher events.Dispatcher, deps Deps) []string {
	if dispatcher == nil {
		return nil
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var started []string
	if deps.Notifications != nil {
		deps.Notifications.RegisterHandlers()
		started = append(started, "notifications")
	}
	if deps.AttendanceLog != nil {
		subscribeAttendanceLog(dispatcher, deps.AttendanceLog, logger)
		started = append(started, "attendance_log")
	}
	logger.Debug("event workers started", zap.Strings("workers", started))
	return started
}
