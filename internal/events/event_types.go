package events

import (
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationCreated EventType = "registration_created"
	EventBookingCreated      EventType = "booking_created"
	EventAttendeeCheckedIn   EventType = "attendee_checked_in"
	EventAttendeeCheckedOut  EventType = "attendee_checked_out"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	ID        string             `json:"id,omitempty"`
	ConsoleID string             `json:"console_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RegistrationCreatedPayload payload.
type RegistrationCreatedPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	College  string `json:"college,omitempty"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	BookingID  string `json:"booking_id"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
	Amount     int    `json:"amount"`
}

// AttendancePayload payload for check-in and check-out.
type AttendancePayload struct {
	AttendanceID string    `json:"attendance_id"`
	FullName     string    `json:"full_name"`
	At           time.Time `json:"at"`
	RosterSize   int       `json:"roster_size"`
}
