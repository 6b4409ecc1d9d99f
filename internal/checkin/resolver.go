package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanskruthi/fest-service/internal/repository"
)

// Resolution is the outcome of looking up a scanned payload.
type Resolution struct {
	Attendee *Attendee
	// Message is a warning when the attendee cannot be confirmed in the requested mode.
	Message *Message
}

// Resolver maps a scanned payload to a registration and its attendance status.
type Resolver struct {
	registrations repository.RegistrationRepository
	attendance    repository.AttendanceRepository
}

// NewResolver builds a Resolver.
func NewResolver(registrations repository.RegistrationRepository, attendance repository.AttendanceRepository) *Resolver {
	return &Resolver{registrations: registrations, attendance: attendance}
}

// Resolve returns ErrUnknownIdentity when no registration matches; any other
// error is a lookup failure.
func (r *Resolver) Resolve(ctx context.Context, payload string, mode Mode) (*Resolution, error) {
	userID := strings.TrimSpace(payload)
	if userID == "" {
		return nil, ErrUnknownIdentity
	}

	reg, err := r.registrations.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("lookup registration: %w", err)
	}

	attendee := &Attendee{Registration: *reg}
	record, err := r.attendance.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		at := record.CheckInTime
		attendee.AttendanceID = record.ID
		attendee.CheckedInAt = &at
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("lookup attendance: %w", err)
	}

	res := &Resolution{Attendee: attendee}
	switch {
	case mode == ModeCheckIn && attendee.CheckedIn():
		res.Message = newMessage(SeverityWarning, CodeAlreadyCheckedIn,
			"%s is already checked in at %s", reg.FullName, attendee.CheckedInAt.Local().Format(timeLayout))
	case mode == ModeCheckOut && !attendee.CheckedIn():
		res.Message = newMessage(SeverityWarning, CodeNotCheckedIn,
			"%s has not checked in yet", reg.FullName)
	}
	return res, nil
}
