package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/service"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// AuthHandler exposes attendee sign-in and the admin gate.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Google handles POST /auth/google.
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req dto.GoogleSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	identity, token, err := h.auth.SignInWithGoogle(c.UserContext(), req.Credential)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"identity": dto.FromIdentity(identity),
			"auth":     dto.FromToken(token),
		},
	})
}

// Admin handles POST /auth/admin.
func (h *AuthHandler) Admin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Code == "" {
		return apperrors.NewValidationError("code required", nil)
	}
	token, err := h.auth.AdminLogin(c.UserContext(), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.FromToken(token)}})
}
