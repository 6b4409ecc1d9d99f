package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/auth"
	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/domain"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

// adminIdentity is the subject of every admin token; the gate is a shared code.
var adminIdentity = domain.Identity{ID: "admin", Name: "Check-in desk"}

// AuthService coordinates attendee sign-in and the admin gate.
type AuthService struct {
	verifier  auth.IdentityVerifier
	tokenMgr  *auth.TokenManager
	adminHash string
	logger    *zap.Logger
}

// NewAuthService builds the service. A plaintext admin code is hashed once
// at startup; a configured hash takes precedence.
func NewAuthService(cfg config.AuthConfig, verifier auth.IdentityVerifier, logger *zap.Logger) (*AuthService, error) {
	hash := strings.TrimSpace(cfg.AdminCodeHash)
	if hash == "" && cfg.AdminCode != "" {
		var err error
		hash, err = auth.HashSecret(cfg.AdminCode, cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
	}
	if hash == "" {
		logger.Warn("admin code not configured; admin gate is closed")
	}
	return &AuthService{
		verifier:  verifier,
		tokenMgr:  auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		adminHash: hash,
		logger:    logger,
	}, nil
}

// SignInWithGoogle exchanges a provider credential for an attendee token.
func (s *AuthService) SignInWithGoogle(ctx context.Context, credential string) (domain.Identity, domain.Token, error) {
	if strings.TrimSpace(credential) == "" {
		return domain.Identity{}, domain.Token{}, apperrors.NewValidationError("credential is required", nil)
	}
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityRejected) {
			s.logger.Info("sign-in rejected", zap.Error(err))
			return domain.Identity{}, domain.Token{}, apperrors.NewUnauthorized("sign-in failed")
		}
		return domain.Identity{}, domain.Token{}, err
	}
	token, err := s.tokenMgr.Issue(domain.SubjectTypeAttendee, identity)
	if err != nil {
		return domain.Identity{}, domain.Token{}, err
	}
	return identity, token, nil
}

// AdminLogin checks the admin code and issues an admin token.
func (s *AuthService) AdminLogin(_ context.Context, code string) (domain.Token, error) {
	if s.adminHash == "" {
		return domain.Token{}, apperrors.NewUnauthorized("admin access is disabled")
	}
	if err := auth.CompareSecret(s.adminHash, code); err != nil {
		s.logger.Warn("admin code rejected")
		return domain.Token{}, apperrors.NewUnauthorized("invalid admin code")
	}
	return s.tokenMgr.Issue(domain.SubjectTypeAdmin, adminIdentity)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
