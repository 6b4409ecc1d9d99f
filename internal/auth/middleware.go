package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/domain"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

const principalKey = "fest.principal"

// Principal is the verified caller of a request.
type Principal struct {
	SubjectType domain.SubjectType
	Identity    domain.Identity
	ExpiresAt   time.Time
}

// AuthMiddleware resolves the bearer session into a Principal. Sessions carry
// the identity, so no store lookup happens here.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle rejects requests without a valid session.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	principal, err := m.tokens.Verify(raw)
	if errors.Is(err, ErrTokenExpired) {
		return apperrors.NewDomainError("SESSION_EXPIRED", "session expired, sign in again", fiber.StatusUnauthorized, nil)
	}
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return token, nil
}

// PrincipalFromContext returns the caller stored by Handle.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
