package checkin

import (
	"errors"
	"fmt"
)

var (
	// ErrCameraUnavailable means the frame source could not be opened or failed mid-stream.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrCameraInUse means the frame source is already owned by another stream.
	ErrCameraInUse = errors.New("camera already in use")
	// ErrStreamClosed is returned by Next after Close.
	ErrStreamClosed = errors.New("frame stream closed")
	// ErrUnknownIdentity means no registration matches the scanned payload.
	ErrUnknownIdentity = errors.New("no registration found for this code")
	// ErrNotCheckedIn blocks a check-out without a live attendance record.
	ErrNotCheckedIn = errors.New("attendee has not checked in")
	// ErrAlreadyCheckedIn blocks a second live attendance record.
	ErrAlreadyCheckedIn = errors.New("attendee is already checked in")
	// ErrIdentityLocked means another console is mutating the same attendee.
	ErrIdentityLocked = errors.New("attendee is being updated by another console")
	// ErrNoAttendee means Confirm was called without a resolved attendee.
	ErrNoAttendee = errors.New("no attendee resolved")
	// ErrBusy means the console is resolving or mutating.
	ErrBusy = errors.New("console is busy")
	// ErrConsoleClosed is returned by every operation after Close.
	ErrConsoleClosed = errors.New("console closed")
	// ErrConsoleNotFound is returned by Manager for unknown ids.
	ErrConsoleNotFound = errors.New("console not found")
)

// StoreError reports a failed document store operation during a mutation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
