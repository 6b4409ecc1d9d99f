package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/auth"
	"github.com/sanskruthi/fest-service/internal/service"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// BookingsHandler manages ticket bookings.
type BookingsHandler struct {
	service *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// Create handles POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("attendee required")
	}
	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	booking, err := h.service.Create(c.UserContext(), principal.Identity, service.BookingInput{
		TicketType: req.TicketType,
		Quantity:   req.Quantity,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromBooking(*booking)})
}

// List handles GET /bookings.
func (h *BookingsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("attendee required")
	}
	bookings, err := h.service.ListMine(c.UserContext(), principal.Identity.ID)
	if err != nil {
		return err
	}
	items := make([]dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.FromBooking(b))
	}
	return c.JSON(fiber.Map{"data": items})
}
