package checkin

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// Mode selects what Confirm does with a resolved attendee.
type Mode string

const (
	ModeCheckIn  Mode = "check-in"
	ModeCheckOut Mode = "check-out"
)

// ParseMode accepts "check-in"/"check-out" and the common spellings without a dash.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "check-in", "checkin", "in":
		return ModeCheckIn, nil
	case "check-out", "checkout", "out":
		return ModeCheckOut, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State is the console's position in the scan/resolve/mutate cycle.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
	StateMutating  State = "mutating"
)

// Severity of an operator-facing message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Message codes.
const (
	CodeCheckedIn         = "CHECKED_IN"
	CodeCheckedOut        = "CHECKED_OUT"
	CodeUnknownIdentity   = "UNKNOWN_IDENTITY"
	CodeLookupFailed      = "LOOKUP_FAILED"
	CodeAlreadyCheckedIn  = "ALREADY_CHECKED_IN"
	CodeNotCheckedIn      = "NOT_CHECKED_IN"
	CodeIdentityLocked    = "IDENTITY_LOCKED"
	CodeStoreWriteFailed  = "STORE_WRITE_FAILED"
	CodeCameraUnavailable = "CAMERA_UNAVAILABLE"
)

// Message is shown to the operator.
type Message struct {
	Code     string
	Text     string
	Severity Severity
}

func newMessage(sev Severity, code, format string, args ...any) *Message {
	return &Message{Code: code, Severity: sev, Text: fmt.Sprintf(format, args...)}
}

// Attendee is a resolved registration joined with its live attendance record, if any.
type Attendee struct {
	Registration domain.Registration
	// AttendanceID is empty when the attendee has no live attendance record.
	AttendanceID string
	CheckedInAt  *time.Time
}

// CheckedIn reports whether a live attendance record was found.
func (a *Attendee) CheckedIn() bool {
	return a != nil && a.AttendanceID != ""
}

// CanCheckOut reports whether a delete can be issued for this attendee.
func (a *Attendee) CanCheckOut() bool {
	return a.CheckedIn()
}

// Snapshot is a point-in-time copy of a console's session state.
type Snapshot struct {
	ConsoleID   string
	Mode        Mode
	State       State
	Scanning    bool
	Attendee    *Attendee
	Message     *Message
	CameraError string
	CanConfirm  bool
	RosterSize  int
	Cycle       uint64
}

const timeLayout = "2006-01-02 15:04:05"
