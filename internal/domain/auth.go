package domain

import "time"

// SubjectType differentiates attendee vs admin tokens.
type SubjectType string

const (
	SubjectTypeAttendee SubjectType = "ATTENDEE"
	SubjectTypeAdmin    SubjectType = "ADMIN"
)

// Valid reports whether s is a known subject.
func (s SubjectType) Valid() bool {
	return s == SubjectTypeAttendee || s == SubjectTypeAdmin
}

// Identity is a verified caller as reported by the authentication provider.
// ID is the stable identity key used across registrations and attendance.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	Subject   SubjectType
	SubjectID string
	ExpiresAt time.Time
}
