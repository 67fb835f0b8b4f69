// Package services – VerificationService
//
// This file implements the lifecycle of one-time verification codes: issue
// (throttle check, generation, replacement of prior unverified codes,
// send-event recording, asynchronous delivery), validation, and consumption.
//
// Issue runs its throttle-check-and-record sequence inside a single database
// transaction so two concurrent requests for the same recipient cannot both
// pass the check before either records its event. Redeem does the same for
// validate-and-consume, closing the double-redemption window.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/grammar-azi/user-service/internal/domain"
	"github.com/grammar-azi/user-service/internal/repo"
)

// Mailer is the delivery capability the verification service depends on.
// Delivery is fire-and-forget: implementations queue the message and return
// immediately, and failures are logged rather than surfaced to the caller.
type Mailer interface {
	DeliverCodeAsync(email, code string)
}

// DefaultCodeTTL is how long an issued code stays redeemable.
const DefaultCodeTTL = 180 * time.Second

// VerificationService orchestrates verification-code issuance and
// redemption. It is safe for concurrent use.
type VerificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Limiter enforces the per-recipient send throttle.
	Limiter *SendLimiter
	// Mailer queues code delivery; may be nil in tests.
	Mailer Mailer
	// Policy is the throttle policy loaded at startup, passed by value.
	Policy domain.ThrottlePolicy
	// CodeTTL bounds code lifetime; zero means DefaultCodeTTL.
	CodeTTL time.Duration
	// Now supplies the current time. Defaults to time.Now when nil.
	Now func() time.Time
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VerificationService) ttl() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

// Issue generates and persists a fresh code for email and queues its
// delivery. Any existing unverified codes for the recipient are deleted
// first (regardless of expiry), so at most one active code exists per
// recipient.
//
// The throttle check, code replacement, and send-event insert run in one
// transaction. On throttle rejection a *ThrottledError is returned and no
// state changes besides the limiter's own reset cleanup.
func (s *VerificationService) Issue(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Limiter.Acquire(ctx, tx, email, s.Policy); err != nil {
			return err
		}

		deleted, err := repo.DeleteUnverifiedCodes(ctx, tx, email)
		if err != nil {
			return err
		}
		if deleted > 0 {
			log.Debug().Str("email", email).Int64("deleted", deleted).
				Msg("replaced existing verification codes")
		}

		if _, err := repo.CreateVerificationCode(ctx, tx, email, code, now); err != nil {
			return err
		}
		_, err = repo.CreateSendEvent(ctx, tx, email, now)
		return err
	})
	if err != nil {
		if te, ok := AsThrottled(err); ok {
			observeThrottled(te)
		}
		return "", err
	}

	codesIssued.Inc()
	if s.Mailer != nil {
		s.Mailer.DeliverCodeAsync(email, code)
	}
	return code, nil
}

// Validate looks up the exact (email, code) row and checks that it is still
// redeemable. Unknown, already-verified, and expired codes all fail with
// ErrInvalidCode; the caller cannot distinguish the cases. On success the
// stored row is returned and the caller decides whether to consume it.
func (s *VerificationService) Validate(ctx context.Context, email, code string) (*domain.VerificationCode, error) {
	return s.validate(ctx, s.DB, email, code)
}

func (s *VerificationService) validate(ctx context.Context, db *gorm.DB, email, code string) (*domain.VerificationCode, error) {
	rec, err := repo.FindVerificationCode(ctx, db, email, code)
	if err != nil {
		validationFailures.Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if rec.Verified || rec.IsExpired(s.now(), s.ttl()) {
		validationFailures.Inc()
		return nil, ErrInvalidCode
	}
	return rec, nil
}

// Consume marks every code for email as verified. The update is a bulk one
// and repeating it is a no-op, so consumption is idempotent at this layer;
// Validate will reject the code afterwards.
func (s *VerificationService) Consume(ctx context.Context, email string) error {
	return repo.MarkCodesVerified(ctx, s.DB, email)
}

// Redeem validates and consumes a code in a single transaction. It is the
// entry point used when the code must be spent exactly once and nothing
// else happens alongside.
func (s *VerificationService) Redeem(ctx context.Context, email, code string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.RedeemIn(ctx, tx, email, code)
	})
}

// RedeemIn validates and consumes a code on an existing transaction handle,
// so callers can redeem atomically with their own writes (user creation,
// password update).
func (s *VerificationService) RedeemIn(ctx context.Context, tx *gorm.DB, email, code string) error {
	if _, err := s.validate(ctx, tx, email, code); err != nil {
		return err
	}
	if err := repo.MarkCodesVerified(ctx, tx, email); err != nil {
		return err
	}
	codesRedeemed.Inc()
	return nil
}
