package dto

import (
	"time"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// GoogleSignInRequest carries the ID token from Google sign-in.
type GoogleSignInRequest struct {
	Credential string `json:"credential"`
}

// AdminLoginRequest payload for the admin gate.
type AdminLoginRequest struct {
	Code string `json:"code"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string             `json:"token"`
	Subject   domain.SubjectType `json:"subject"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// IdentityResponse describes the signed-in attendee.
type IdentityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FromToken converts a token.
func FromToken(t domain.Token) AuthResponse {
	return AuthResponse{Token: t.Value, Subject: t.Subject, ExpiresAt: t.ExpiresAt}
}

// FromIdentity converts an identity.
func FromIdentity(id domain.Identity) IdentityResponse {
	return IdentityResponse{ID: id.ID, Name: id.Name, Email: id.Email}
}
