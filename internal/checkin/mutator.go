package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/lock"
	"github.com/sanskruthi/fest-service/internal/repository"
)

// Mutator performs the attendance writes behind Confirm. Writes for one
// identity are serialised through the Locker.
type Mutator struct {
	attendance repository.AttendanceRepository
	locker     lock.Locker
	lockTTL    time.Duration
	now        func() time.Time
}

// NewMutator builds a Mutator; a nil locker falls back to an in-process one.
func NewMutator(attendance repository.AttendanceRepository, locker lock.Locker, lockTTL time.Duration) *Mutator {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Mutator{attendance: attendance, locker: locker, lockTTL: lockTTL, now: time.Now}
}

// CheckIn creates the attendance record. On ErrAlreadyCheckedIn the live
// record is returned alongside the error when it can be read.
func (m *Mutator) CheckIn(ctx context.Context, a *Attendee) (*domain.AttendanceRecord, error) {
	if a == nil || a.Registration.UserID == "" {
		return nil, ErrNoAttendee
	}
	userID := a.Registration.UserID

	release, err := m.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := m.attendance.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		return existing, ErrAlreadyCheckedIn
	case !errors.Is(err, repository.ErrNotFound):
		return nil, &StoreError{Op: "check in", Err: err}
	}

	record := &domain.AttendanceRecord{
		UserID:      userID,
		FullName:    a.Registration.FullName,
		CheckInTime: m.now().UTC(),
	}
	if err := m.attendance.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, _ := m.attendance.FindByUserID(ctx, userID)
			return existing, ErrAlreadyCheckedIn
		}
		return nil, &StoreError{Op: "check in", Err: err}
	}
	return record, nil
}

// CheckOut deletes the attendance record found at resolve time.
func (m *Mutator) CheckOut(ctx context.Context, a *Attendee) error {
	if a == nil || a.Registration.UserID == "" {
		return ErrNoAttendee
	}
	if !a.CanCheckOut() {
		return ErrNotCheckedIn
	}

	release, err := m.acquire(ctx, a.Registration.UserID)
	if err != nil {
		return err
	}
	defer release()

	if err := m.attendance.Delete(ctx, a.AttendanceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotCheckedIn
		}
		return &StoreError{Op: "check out", Err: err}
	}
	return nil
}

// Roster lists everyone currently checked in, newest first.
func (m *Mutator) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	entries, err := m.attendance.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return entries, nil
}

func (m *Mutator) acquire(ctx context.Context, userID string) (func(), error) {
	release, err := m.locker.Acquire(ctx, "checkin:"+userID, m.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrIdentityLocked
		}
		return nil, &StoreError{Op: "lock attendee", Err: err}
	}
	return func() {
		_ = release(context.WithoutCancel(ctx))
	}, nil
}
