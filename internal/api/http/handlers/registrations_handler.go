package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/auth"
	"github.com/sanskruthi/fest-service/internal/service"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// metadataPrefix marks free-form form fields stored in registration metadata.
const metadataPrefix = "meta_"

// RegistrationsHandler manages attendee registrations and tickets.
type RegistrationsHandler struct {
	service *service.RegistrationService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrationService *service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{service: registrationService}
}

// Create handles POST /registrations (multipart form with a photo file).
func (h *RegistrationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("attendee required")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}

	value := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	input := service.RegistrationInput{
		FullName:       value("full_name"),
		Phone:          value("phone"),
		College:        value("college"),
		Department:     value("department"),
		Year:           value("year"),
		ReferralSource: value("referral_source"),
	}
	for key, vals := range form.Value {
		if strings.HasPrefix(key, metadataPrefix) && len(vals) > 0 {
			if input.Metadata == nil {
				input.Metadata = map[string]string{}
			}
			input.Metadata[strings.TrimPrefix(key, metadataPrefix)] = vals[0]
		}
	}

	var photo *service.PhotoUpload
	if files := form.File["photo"]; len(files) > 0 {
		file, err := files[0].Open()
		if err != nil {
			return apperrors.NewValidationError("photo could not be read", nil)
		}
		defer file.Close()
		photo = &service.PhotoUpload{Filename: files[0].Filename, Size: files[0].Size, Body: file}
	}

	reg, err := h.service.Register(c.UserContext(), principal.Identity, input, photo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromRegistration(*reg)})
}

// Me handles GET /registrations/me.
func (h *RegistrationsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("attendee required")
	}
	reg, err := h.service.Get(c.UserContext(), principal.Identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRegistration(*reg)})
}

// Ticket handles GET /registrations/me/ticket.png.
func (h *RegistrationsHandler) Ticket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("attendee required")
	}
	size, _ := strconv.Atoi(c.Query("size"))
	if size < 0 || size > 1024 {
		return apperrors.NewValidationError("size must be between 1 and 1024", nil)
	}
	png, err := h.service.Ticket(c.UserContext(), principal.Identity.ID, size)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(png)
}

// List handles GET /admin/registrations.
func (h *RegistrationsHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	regs, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		items = append(items, dto.FromRegistration(r))
	}
	return c.JSON(fiber.Map{"data": items})
}
