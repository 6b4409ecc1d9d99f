package dto

import (
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// CreateBookingRequest payload.
type CreateBookingRequest struct {
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// BookingResponse is a booking as returned over HTTP.
type BookingResponse struct {
	ID         string               `json:"id"`
	FullName   string               `json:"full_name"`
	Email      string               `json:"email"`
	Phone      string               `json:"phone"`
	TicketType string               `json:"ticket_type"`
	Quantity   int                  `json:"quantity"`
	UnitPrice  int                  `json:"unit_price"`
	Amount     int                  `json:"amount"`
	Status     domain.BookingStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

// FromBooking converts a booking.
func FromBooking(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		FullName:   b.FullName,
		Email:      b.Email,
		Phone:      b.Phone,
		TicketType: b.TicketType,
		Quantity:   b.Quantity,
		UnitPrice:  b.UnitPrice,
		Amount:     b.Amount,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
}
