package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/catalog"
	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/repository"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// BookingInput describes a ticket booking request.
type BookingInput struct {
	TicketType string
	Quantity   int
	FullName   string
	Email      string
	Phone      string
}

// BookingService places pending ticket bookings priced from the catalog.
type BookingService struct {
	bookings   repository.BookingRepository
	catalog    *catalog.Catalog
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBookingService constructs the service.
func NewBookingService(bookings repository.BookingRepository, cat *catalog.Catalog, dispatcher events.Dispatcher, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{bookings: bookings, catalog: cat, dispatcher: dispatcher, logger: logger}
}

// Create validates and stores a booking with status pending.
func (s *BookingService) Create(ctx context.Context, id domain.Identity, in BookingInput) (*domain.Booking, error) {
	fullName := firstNonEmpty(in.FullName, id.Name)
	email := firstNonEmpty(in.Email, id.Email)

	problems := fieldErrors{}
	problems.require("full_name", fullName)
	problems.require("email", email)
	phone, ok := normalizePhone(in.Phone)
	if !ok {
		problems["phone"] = "must be 7 to 15 digits"
	}
	ticket, found := s.catalog.TicketType(in.TicketType)
	if !found {
		problems["ticket_type"] = "unknown ticket type"
	}
	if in.Quantity < 1 || in.Quantity > s.catalog.MaxQuantity {
		problems["quantity"] = "out of range"
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid booking", problems)
	}

	booking := &domain.Booking{
		UserID:     id.ID,
		FullName:   fullName,
		Email:      email,
		Phone:      phone,
		TicketType: ticket.Code,
		Quantity:   in.Quantity,
		UnitPrice:  ticket.Price,
		Amount:     ticket.Price * in.Quantity,
		Status:     domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBookingCreated,
			UserID:    id.ID,
			Actor:     events.Actor{Type: domain.SubjectTypeAttendee, ID: id.ID},
			Timestamp: time.Now().UTC(),
			Payload: events.BookingCreatedPayload{
				BookingID:  booking.ID,
				TicketType: booking.TicketType,
				Quantity:   booking.Quantity,
				Amount:     booking.Amount,
			},
		}); err != nil {
			s.logger.Warn("publish booking event", zap.Error(err))
		}
	}
	return booking, nil
}

// ListMine returns the caller's bookings.
func (s *BookingService) ListMine(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// Catalog exposes the event catalog.
func (s *BookingService) Catalog() *catalog.Catalog {
	return s.catalog
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
