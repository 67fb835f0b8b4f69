// Package services – AccountService
//
// Registration and profile management. Registration is a two-step flow:
// the client first requests a verification code for an unregistered email,
// then submits the registration form together with the code. The account
// is created already verified, atomically with code consumption.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/auth"
	"github.com/grammar-azi/user-service/internal/domain"
	"github.com/grammar-azi/user-service/internal/repo"
	"github.com/grammar-azi/user-service/internal/utils"
)

// AccountService implements registration and profile operations.
type AccountService struct {
	DB    *gorm.DB
	Codes *VerificationService
}

// RegisterInput is the validated registration form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Bio             string
	Code            string
}

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// SendRegistrationCode issues a verification code for an email that is not
// yet registered. A registered email fails with ErrEmailRegistered before
// any throttle state is touched.
func (s *AccountService) SendRegistrationCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	exists, err := repo.EmailExists(ctx, s.DB, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailRegistered
	}
	_, err = s.Codes.Issue(ctx, email)
	return err
}

// Register creates the account after checking the verification code. User
// creation and code consumption happen in one transaction, so a code
// cannot be spent without the account existing and vice versa. The new
// account starts verified.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	exists, err := repo.EmailExists(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailRegistered
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Codes.RedeemIn(ctx, tx, email, in.Code); err != nil {
			return err
		}

		slug, err := s.uniqueSlug(ctx, tx, email, in.FirstName, in.LastName)
		if err != nil {
			return err
		}

		user, err = repo.CreateUser(ctx, tx, &domain.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Bio:          in.Bio,
			Slug:         slug,
			IsVerified:   true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// uniqueSlug derives the profile slug from the user's name, falling back
// to the email local part, and appends a counter until it is free.
func (s *AccountService) uniqueSlug(ctx context.Context, tx *gorm.DB, email, first, last string) (string, error) {
	base := utils.Slugify(strings.TrimSpace(first + " " + last))
	if base == "" {
		base = utils.Slugify(strings.SplitN(email, "@", 2)[0])
	}
	return utils.UniqueSlug(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return repo.SlugExists(ctx, tx, candidate)
	})
}

// Profile fetches the public profile behind slug.
func (s *AccountService) Profile(ctx context.Context, slug string) (*domain.User, error) {
	u, err := repo.GetUserBySlug(ctx, s.DB, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile applies the non-nil fields of upd to the user identified
// by id and returns the refreshed row. The slug is stable: renaming a user
// does not change their profile URL.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error) {
	fields := map[string]any{}
	if upd.FirstName != nil {
		fields["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		fields["last_name"] = *upd.LastName
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if len(fields) > 0 {
		if err := repo.UpdateUserProfile(ctx, s.DB, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	u, err := repo.GetUserByID(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// NormalizeEmail lowercases and trims an address so the same mailbox never
// yields two distinct throttle or account identities.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
