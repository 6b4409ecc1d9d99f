package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// ErrIdentityRejected is returned for tokens that fail verification.
var ErrIdentityRejected = errors.New("identity token rejected")

// IdentityVerifier turns a provider credential into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (domain.Identity, error)
}

// GoogleVerifier validates Google ID tokens issued for clientID.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier creates a verifier for the OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify checks signature, audience and expiry, then extracts the identity.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (domain.Identity, error) {
	if v.clientID == "" {
		return domain.Identity{}, fmt.Errorf("%w: google sign-in is not configured", ErrIdentityRejected)
	}
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrIdentityRejected, err)
	}
	if payload.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", ErrIdentityRejected)
	}
	id := domain.Identity{ID: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
