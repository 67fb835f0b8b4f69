// Package services – PasswordService
//
// Password recovery (code-gated reset for users who forgot theirs) and
// authenticated password change.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/auth"
	"github.com/grammar-azi/user-service/internal/repo"
)

// PasswordService implements the reset and change flows.
type PasswordService struct {
	DB    *gorm.DB
	Codes *VerificationService
}

// SendResetCode issues a verification code for an existing account. Unknown
// emails fail with ErrUserNotFound before any throttle state is touched; a
// reset code never goes to an address we have no account for.
func (s *PasswordService) SendResetCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	exists, err := repo.EmailExists(ctx, s.DB, email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	_, err = s.Codes.Issue(ctx, email)
	return err
}

// ResetPassword sets a new password after redeeming the verification code.
// Code consumption and the hash update run in one transaction.
func (s *PasswordService) ResetPassword(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	email = NormalizeEmail(email)
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Codes.RedeemIn(ctx, tx, email, code); err != nil {
			return err
		}
		if err := repo.UpdateUserPassword(ctx, tx, email, hash); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
}

// ChangePassword replaces the password of an authenticated user after
// checking their current one. No verification code is involved.
func (s *PasswordService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	u, err := repo.GetUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, oldPassword) {
		return ErrOldPasswordIncorrect
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return repo.UpdateUserPassword(ctx, s.DB, u.Email, hash)
}
