package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/sanskruthi/fest-service/internal/domain"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	id := domain.Identity{ID: "g-123", Name: "Asha", Email: "asha@example.com"}
	tok, err := tm.Issue(domain.SubjectTypeAttendee, id)
	require.NoError(t, err)
	assert.Equal(t, "g-123", tok.SubjectID)

	principal, err := tm.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeAttendee, principal.SubjectType)
	assert.Equal(t, id, principal.Identity)
	assert.WithinDuration(t, tok.ExpiresAt, principal.ExpiresAt, time.Second)

	other, err := tm.Issue(domain.SubjectTypeAttendee, id)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Value, other.Value)
}

func TestVerify_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tok, err := tm.Issue(domain.SubjectTypeAdmin, domain.Identity{ID: "admin"})
	require.NoError(t, err)

	_, err = NewTokenManager("other", 1).Verify(tok.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Verify("nope")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	rogue, err := tm.Issue(domain.SubjectType("ROOT"), domain.Identity{ID: "x"})
	require.NoError(t, err)
	_, err = tm.Verify(rogue.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSecretHashing(t *testing.T) {
	hash, err := HashSecret("open-sesame", 4)
	require.NoError(t, err)
	assert.NoError(t, CompareSecret(hash, "open-sesame"))
	assert.Error(t, CompareSecret(hash, "wrong"))
}

func newAuthApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/me", mw.Handle, RequireAttendee(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Identity.ID)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newAuthApp(tm)

	attendee, err := tm.Issue(domain.SubjectTypeAttendee, domain.Identity{ID: "g-1"})
	require.NoError(t, err)
	admin, err := tm.Issue(domain.SubjectTypeAdmin, domain.Identity{ID: "admin"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"bad scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"attendee ok", "/me", "Bearer " + attendee.Value, http.StatusOK},
		{"admin on attendee route", "/me", "Bearer " + admin.Value, http.StatusForbidden},
		{"attendee on admin route", "/admin", "Bearer " + attendee.Value, http.StatusForbidden},
		{"admin ok", "/admin", "Bearer " + admin.Value, http.StatusNoContent},
		{"empty bearer", "/me", "Bearer   ", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestMiddleware_ExpiredSession(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tok, err := tm.Issue(domain.SubjectTypeAttendee, domain.Identity{ID: "g-1"})
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(time.Hour) }

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	resp, err := newAuthApp(tm).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "SESSION_EXPIRED", string(body))
}

func TestGoogleVerifier(t *testing.T) {
	v := NewGoogleVerifier("client-1")
	v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good" || audience != "client-1" {
			return nil, errors.New("bad token")
		}
		return &idtoken.Payload{Subject: "1089", Claims: map[string]interface{}{"email": "asha@example.com", "name": "Asha"}}, nil
	}

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "1089", Name: "Asha", Email: "asha@example.com"}, id)

	_, err = v.Verify(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrIdentityRejected)

	_, err = NewGoogleVerifier("").Verify(context.Background(), "good")
	assert.ErrorIs(t, err, ErrIdentityRejected)
}
