package domain

import "time"

// BookingStatus tracks payment lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a ticket reservation placed by a signed-in attendee.
type Booking struct {
	ID         string
	UserID     string
	FullName   string
	Email      string
	Phone      string
	TicketType string
	Quantity   int
	UnitPrice  int
	Amount     int
	Status     BookingStatus
	CreatedAt  time.Time
}
