package domain

import "time"

// AttendanceRecord marks an attendee as currently inside the venue.
type AttendanceRecord struct {
	ID          string
	UserID      string
	FullName    string
	CheckInTime time.Time
}

// RosterEntry joins a live attendance record with its registration.
type RosterEntry struct {
	Registration Registration
	AttendanceID string
	CheckInTime  time.Time
}

// AttendanceAction is what an attendance log entry records.
type AttendanceAction string

const (
	AttendanceCheckIn  AttendanceAction = "check_in"
	AttendanceCheckOut AttendanceAction = "check_out"
)

// AttendanceLogEntry is an immutable audit entry for a check-in or check-out.
// Live records in checked_in are deleted on check-out; the log keeps both.
type AttendanceLogEntry struct {
	ID           string
	UserID       string
	FullName     string
	AttendanceID string
	Action       AttendanceAction
	ActorType    SubjectType
	ConsoleID    string
	CreatedAt    time.Time
}
