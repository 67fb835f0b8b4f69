// Package services – SendLimiter
//
// This file implements the per-recipient throttling engine that governs
// whether another verification message may be dispatched to an email
// address. The limiter reads the append-only send-event log and applies, in
// order:
//
//  1. Reset: if the recipient's oldest event predates the policy reset
//     window, every event for that recipient is deleted. This is a full
//     reset, not a sliding window: a burst right at the boundary wipes the
//     whole count, not just the oldest entry. Deliberate simplification.
//  2. Daily limit: events are counted for the current calendar day (local
//     date truncation, not a rolling 24h window). At or above the policy
//     limit the caller is told to retry once the earliest event of the day
//     ages past the reset window.
//  3. Spacing: the most recent event (any day) must be at least the policy
//     expiration window in the past.
//
// The limiter never writes state on success; the service layer records the
// send event after delivery preparation, inside the same transaction as the
// acquire call.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
	"github.com/grammar-azi/user-service/internal/repo"
)

// genericLimitMessage is returned when the daily count is at the limit but
// no event for the current day can be located (inconsistent state). It
// carries no retry duration.
const genericLimitMessage = "You have reached your daily verification code limit, please try again later."

// SendLimiter decides whether a recipient may receive another verification
// message under a given throttle policy. The zero Now field defaults to
// time.Now; tests inject a fixed clock.
type SendLimiter struct {
	// Now supplies the current time. Defaults to time.Now when nil.
	Now func() time.Time
}

// now returns the injected clock's current time, defaulting to time.Now.
func (l *SendLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Acquire reports whether a message may be sent to email now under policy.
// It returns nil when sending is permitted and a *ThrottledError describing
// the required wait otherwise. A recipient with zero prior events always
// passes.
//
// Acquire may delete expired send events (the reset in step 1) but records
// nothing on success; the caller is responsible for inserting the SendEvent
// after a permitted send, ideally on the same transaction handle so the
// check-then-write sequence is atomic per recipient.
func (l *SendLimiter) Acquire(ctx context.Context, db *gorm.DB, email string, policy domain.ThrottlePolicy) error {
	now := l.now()

	if err := l.clearOldEvents(ctx, db, email, policy.ResetWindow, now); err != nil {
		return err
	}

	if err := l.checkDailyLimit(ctx, db, email, policy, now); err != nil {
		return err
	}

	return l.checkSpacing(ctx, db, email, policy.ExpirationWindow, now)
}

// clearOldEvents wipes the recipient's entire event log once the oldest
// event is at least resetWindow old.
func (l *SendLimiter) clearOldEvents(ctx context.Context, db *gorm.DB, email string, resetWindow time.Duration, now time.Time) error {
	oldest, err := repo.OldestSendEvent(ctx, db, email)
	if err != nil {
		return err
	}
	if oldest == nil {
		return nil
	}
	if now.Sub(oldest.SentAt) >= resetWindow {
		return repo.DeleteSendEvents(ctx, db, email)
	}
	return nil
}

// checkDailyLimit rejects once the recipient already received policy.Limit
// messages on the current calendar day. The retry hint is measured from the
// earliest event of the day plus the reset window.
func (l *SendLimiter) checkDailyLimit(ctx context.Context, db *gorm.DB, email string, policy domain.ThrottlePolicy, now time.Time) error {
	count, err := repo.CountSendEventsOnDay(ctx, db, email, now)
	if err != nil {
		return err
	}
	if count < int64(policy.Limit) {
		return nil
	}

	earliest, err := repo.EarliestSendEventOnDay(ctx, db, email, now)
	if err != nil {
		return err
	}
	if earliest == nil {
		// Count said we are at the limit but no event of today exists.
		return &ThrottledError{Message: genericLimitMessage, Reason: ThrottleReasonUnknown}
	}

	remaining := earliest.SentAt.Add(policy.ResetWindow).Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return &ThrottledError{
		Message: fmt.Sprintf(
			"You have reached your daily message limit. Please try again in %s minutes.",
			FormatRemaining(remaining),
		),
		Reason:        ThrottleReasonDailyLimit,
		RetryAfter:    remaining,
		HasRetryAfter: true,
	}
}

// checkSpacing rejects when the most recent event (any day) is closer than
// the expiration window.
func (l *SendLimiter) checkSpacing(ctx context.Context, db *gorm.DB, email string, window time.Duration, now time.Time) error {
	last, err := repo.LatestSendEvent(ctx, db, email)
	if err != nil {
		return err
	}
	if last == nil {
		return nil
	}

	elapsed := now.Sub(last.SentAt)
	if elapsed >= window {
		return nil
	}

	wait := window - elapsed
	return &ThrottledError{
		Message:       fmt.Sprintf("Please, try again in %s seconds.", FormatRemaining(wait)),
		Reason:        ThrottleReasonSpacing,
		RetryAfter:    wait,
		HasRetryAfter: true,
	}
}
