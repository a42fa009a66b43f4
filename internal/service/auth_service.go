package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scamguard/support-service/internal/auth"
	"github.com/scamguard/support-service/internal/config"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/repository"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

// AuthService authenticates staff members against the directory.
type AuthService struct {
	staff  repository.StaffRepository
	tokens *auth.TokenManager
}

// NewAuthService creates the service.
func NewAuthService(cfg config.AuthConfig, staff repository.StaffRepository) *AuthService {
	return &AuthService{
		staff:  staff,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *domain.StaffMember
}

// Login verifies staff credentials and issues an access token. Invalid email
// and invalid password produce the same error so callers cannot probe for
// accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, apperrors.NewUnavailable("store unavailable")
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Active {
		return nil, apperrors.NewForbidden("staff account disabled")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}
