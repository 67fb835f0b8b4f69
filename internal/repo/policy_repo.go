// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides access to the singleton ThrottlePolicy
// record.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
)

// Built-in policy defaults, used when the singleton row is lazily created.
const (
	DefaultSendLimit        = 3
	DefaultExpirationWindow = 3 * time.Minute
	DefaultResetWindow      = 24 * time.Hour
)

// GetOrCreateThrottlePolicy loads the single throttle policy record, lazily
// creating it with the given defaults when absent. The record is keyed on a
// fixed primary key so at most one row ever exists.
func GetOrCreateThrottlePolicy(ctx context.Context, db *gorm.DB, limit int, expiration, reset time.Duration) (domain.ThrottlePolicy, error) {
	var p domain.ThrottlePolicy
	err := db.WithContext(ctx).First(&p, 1).Error
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ThrottlePolicy{}, err
	}

	p = domain.ThrottlePolicy{
		ID:               1,
		Limit:            limit,
		ExpirationWindow: expiration,
		ResetWindow:      reset,
	}
	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return domain.ThrottlePolicy{}, err
	}
	return p, nil
}

// UpdateThrottlePolicy overwrites the singleton policy record.
func UpdateThrottlePolicy(ctx context.Context, db *gorm.DB, p domain.ThrottlePolicy) error {
	p.ID = 1
	return db.WithContext(ctx).Save(&p).Error
}
