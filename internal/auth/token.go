package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// Issuer is stamped into every session token.
const Issuer = "sanskruthi-2k25"

var (
	// ErrTokenExpired is returned for a well-signed token past its expiry.
	ErrTokenExpired = errors.New("session expired")
	// ErrTokenInvalid covers every other rejected token.
	ErrTokenInvalid = errors.New("invalid session token")
)

// TokenManager issues and verifies HS256 session tokens for attendees and the
// admin desk.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager. A non-positive ttl defaults to an hour.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	ttl := time.Duration(ttlMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type sessionClaims struct {
	Kind  domain.SubjectType `json:"kind"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a session for id acting as kind.
func (tm *TokenManager) Issue(kind domain.SubjectType, id domain.Identity) (domain.Token, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := sessionClaims{
		Kind:  kind,
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return domain.Token{}, fmt.Errorf("sign session: %w", err)
	}
	return domain.Token{Value: signed, Subject: kind, SubjectID: id.ID, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, issuer and expiry and returns the caller.
func (tm *TokenManager) Verify(raw string) (*Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" || !claims.Kind.Valid() {
		return nil, ErrTokenInvalid
	}
	return &Principal{
		SubjectType: claims.Kind,
		Identity:    domain.Identity{ID: claims.Subject, Name: claims.Name, Email: claims.Email},
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
