// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// VerificationCode model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
)

// CreateVerificationCode inserts a new unverified code row for email.
func CreateVerificationCode(ctx context.Context, db *gorm.DB, email, code string, createdAt time.Time) (*domain.VerificationCode, error) {
	v := &domain.VerificationCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Verified:  false,
		CreatedAt: createdAt,
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// FindVerificationCode returns the exact-match row for (email, code).
// If no such row exists, it returns ErrNotFound.
func FindVerificationCode(ctx context.Context, db *gorm.DB, email, code string) (*domain.VerificationCode, error) {
	var v domain.VerificationCode
	err := db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteUnverifiedCodes removes all unverified codes for email, regardless
// of expiry. Issuing a new code therefore invalidates any still-valid old
// one.
func DeleteUnverifiedCodes(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	res := db.WithContext(ctx).
		Where("email = ? AND verified = ?", email, false).
		Delete(&domain.VerificationCode{})
	return res.RowsAffected, res.Error
}

// MarkCodesVerified sets verified=true for all rows matching email. The
// update is a bulk one: it can affect more than one row if duplicates exist,
// which should not occur but is not prevented by a uniqueness constraint.
// Repeating the call is a no-op, so consumption is idempotent.
func MarkCodesVerified(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).
		Model(&domain.VerificationCode{}).
		Where("email = ?", email).
		Update("verified", true).Error
}
