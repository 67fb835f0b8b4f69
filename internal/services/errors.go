// Package services defines the business logic for accounts, verification
// codes, and send throttling. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Account and session errors.
var (
	// ErrEmailRegistered is returned when an email address already belongs
	// to an existing account.
	ErrEmailRegistered = errors.New("this email is already registered")

	// ErrUserNotFound indicates that no account exists for the given email
	// or slug.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned when a login attempt fails. The
	// message does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("the new password and confirm password do not match")

	// ErrOldPasswordIncorrect is returned when a password change presents
	// a wrong current password.
	ErrOldPasswordIncorrect = errors.New("the old password is incorrect")

	// ErrInvalidToken is returned when a refresh token cannot be parsed,
	// is expired, or has been revoked.
	ErrInvalidToken = errors.New("invalid token")
)

// ErrInvalidCode is returned whenever code redemption fails. Unknown,
// already-used, and expired codes all map to this single value so the
// response does not leak which case occurred.
var ErrInvalidCode = errors.New("invalid or expired verification code")

// Throttle rejection reasons, carried on ThrottledError for metrics and
// logging. They never surface in API responses.
const (
	ThrottleReasonDailyLimit = "daily_limit"
	ThrottleReasonSpacing    = "spacing"
	ThrottleReasonUnknown    = "unknown"
)

// ThrottledError is returned by the send limiter when a recipient may not
// receive another message yet. Message carries the user-facing retry hint;
// RetryAfter is the machine-readable wait duration when one could be
// computed (HasRetryAfter is false for inconsistent throttle state).
type ThrottledError struct {
	Message       string
	Reason        string
	RetryAfter    time.Duration
	HasRetryAfter bool
}

// Error implements the error interface.
func (e *ThrottledError) Error() string { return e.Message }

// AsThrottled unwraps err into a *ThrottledError when possible.
func AsThrottled(err error) (*ThrottledError, bool) {
	var te *ThrottledError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// FormatRemaining renders a whole-second duration as H:M:S with no
// zero-padding, e.g. 90061s -> "25:1:1". Negative durations render as
// "0:0:0".
func FormatRemaining(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	secs %= 3600
	return fmt.Sprintf("%d:%d:%d", hours, secs/60, secs%60)
}
