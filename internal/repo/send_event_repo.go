// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the SendEvent
// model: the append-only per-recipient log consulted by the send limiter.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - Lookups that find no row return (nil, nil) rather than an error, since
//     "no prior sends" is an expected state for the limiter, not a failure.
//   - On DB errors (connectivity issues, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSendEvent inserts a send event for email at sentAt. The event ID is
// a randomly generated UUID. Events are immutable once written.
func CreateSendEvent(ctx context.Context, db *gorm.DB, email string, sentAt time.Time) (*domain.SendEvent, error) {
	ev := &domain.SendEvent{
		ID:     uuid.NewString(),
		Email:  email,
		SentAt: sentAt,
	}
	if err := db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// OldestSendEvent returns the earliest event for email, or (nil, nil) when
// the recipient has no events.
func OldestSendEvent(ctx context.Context, db *gorm.DB, email string) (*domain.SendEvent, error) {
	var ev domain.SendEvent
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Order("sent_at ASC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// LatestSendEvent returns the most recent event for email (any time, not
// restricted to the current day), or (nil, nil) when there are none.
func LatestSendEvent(ctx context.Context, db *gorm.DB, email string) (*domain.SendEvent, error) {
	var ev domain.SendEvent
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Order("sent_at DESC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// CountSendEventsOnDay counts the recipient's events whose SentAt falls on
// the same calendar day as now (local date truncation, not a rolling 24h
// window).
func CountSendEventsOnDay(ctx context.Context, db *gorm.DB, email string, now time.Time) (int64, error) {
	start, end := dayBounds(now)
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SendEvent{}).
		Where("email = ? AND sent_at >= ? AND sent_at < ?", email, start, end).
		Count(&total).Error
	return total, err
}

// EarliestSendEventOnDay returns the first event sent to email on the same
// calendar day as now, or (nil, nil) when there are none.
func EarliestSendEventOnDay(ctx context.Context, db *gorm.DB, email string, now time.Time) (*domain.SendEvent, error) {
	start, end := dayBounds(now)
	var ev domain.SendEvent
	err := db.WithContext(ctx).
		Where("email = ? AND sent_at >= ? AND sent_at < ?", email, start, end).
		Order("sent_at ASC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteSendEvents removes all events for email. Used when the recipient's
// oldest event predates the reset window: the whole count is wiped, not a
// sliding window.
func DeleteSendEvents(ctx context.Context, db *gorm.DB, email string) error {
	return db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&domain.SendEvent{}).Error
}

// dayBounds returns the half-open interval [startOfDay, startOfNextDay) for
// the calendar day containing t, in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
