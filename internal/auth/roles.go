package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/domain"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// RequireAttendee ensures a signed-in attendee is calling.
func RequireAttendee() fiber.Handler {
	return requireSubject(domain.SubjectTypeAttendee, "attendee sign-in required")
}

// RequireAdmin ensures the caller passed the admin gate.
func RequireAdmin() fiber.Handler {
	return requireSubject(domain.SubjectTypeAdmin, "admin access required")
}

func requireSubject(subject domain.SubjectType, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != subject {
			return apperrors.NewForbidden(message)
		}
		return c.Next()
	}
}
