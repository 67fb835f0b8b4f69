// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the refresh-token denylist used by
// logout.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
)

// RevokeToken records tokenID as revoked until expiresAt. Revoking an
// already-revoked token is a no-op.
func RevokeToken(ctx context.Context, db *gorm.DB, tokenID string, expiresAt time.Time) error {
	rec := &domain.RevokedToken{
		ID:        uuid.NewString(),
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Create(rec).Error
	if err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil
		}
	}
	return err
}

// TokenRevoked reports whether tokenID appears on the denylist.
func TokenRevoked(ctx context.Context, db *gorm.DB, tokenID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&total).Error
	return total > 0, err
}

// PurgeExpiredTokens deletes denylist rows whose token expiry already
// passed; kept tokens can no longer be presented anyway.
func PurgeExpiredTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.RevokedToken{})
	return res.RowsAffected, res.Error
}
