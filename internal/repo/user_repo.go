// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
)

// CreateUser inserts a new user row. The caller supplies a ready-made
// password hash and unique slug; CreatedAt is set to UTC.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by email, or ErrNotFound if missing.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserBySlug fetches a user by profile slug, or ErrNotFound if missing.
func GetUserBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by primary key, or ErrNotFound if missing.
func GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether a user row exists for email.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Count(&total).Error
	return total > 0, err
}

// SlugExists reports whether a user row exists for slug.
func SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("slug = ?", slug).
		Count(&total).Error
	return total > 0, err
}

// UpdateUserPassword replaces the password hash for the user identified by
// email. If no rows are affected, it returns ErrNotFound.
func UpdateUserPassword(ctx context.Context, db *gorm.DB, email, hash string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateUserProfile updates the mutable profile fields of the user
// identified by id. If no rows are affected, it returns ErrNotFound.
func UpdateUserProfile(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
