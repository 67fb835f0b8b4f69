// Package services – SessionService
//
// Login, logout, and refresh-token rotation. Logout works by denylisting
// the refresh token's jti until the token's own expiry; access tokens stay
// valid until they expire on their own, which keeps the hot path free of
// database lookups.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/auth"
	"github.com/grammar-azi/user-service/internal/repo"
)

// SessionService implements session token flows.
type SessionService struct {
	DB     *gorm.DB
	Tokens *auth.Manager
}

// Login verifies the credentials and returns a fresh token pair. Unknown
// email and wrong password both yield ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	u, err := repo.GetUserByEmail(ctx, s.DB, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.Tokens.NewPair(u.ID, u.Email)
}

// Logout denylists the presented refresh token. Revoking an already-revoked
// token succeeds, so retried logouts are harmless.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return ErrInvalidToken
	}
	return repo.RevokeToken(ctx, s.DB, claims.ID, claims.ExpiresAt.Time)
}

// Refresh exchanges a live refresh token for a new pair, rotating it: the
// old token is denylisted as part of the exchange.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := repo.TokenRevoked(ctx, s.DB, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	if err := repo.RevokeToken(ctx, s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	return s.Tokens.NewPair(claims.Subject, claims.Email)
}
