// Package domain defines the persistence models for users, verification
// codes, send events, and the throttle policy. These types are mapped with
// GORM and form the core data layer of the user service.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Email is the unique identifier;
// the slug is a URL-safe handle derived from the user's name (or the email
// local part) and is unique across all users.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier, stored lowercase.
//   - PasswordHash: bcrypt hash of the password; never serialized.
//   - FirstName / LastName / Bio: optional profile fields.
//   - Slug: unique, URL-safe profile handle.
//   - IsVerified: whether the account completed email verification.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(255);not null"`
	FirstName    string         `json:"first_name" gorm:"type:varchar(150)"`
	LastName     string         `json:"last_name"  gorm:"type:varchar(150)"`
	Bio          string         `json:"bio,omitempty" gorm:"type:text"`
	Slug         string         `json:"slug"       gorm:"type:varchar(160);not null;uniqueIndex:ux_users_slug"`
	IsVerified   bool           `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// VerificationCode represents a one-time code issued to an email address.
// At most one unverified code per recipient is intended to exist at a time:
// issuing a new code deletes all prior unverified rows for that recipient.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: recipient address; indexed for per-recipient lookups.
//   - Code: 6-digit numeric string; indexed for exact-match validation.
//   - Verified: set to true exactly once when the code is consumed.
//   - CreatedAt: issuance timestamp, immutable; expiry is computed from it.
type VerificationCode struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;index:idx_codes_email"`
	Code      string    `json:"code"       gorm:"type:char(6);not null;index:idx_codes_code"`
	Verified  bool      `json:"verified"   gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for VerificationCode.
func (VerificationCode) TableName() string { return "verification_codes" }

// IsExpired reports whether the code is past its lifetime at the given
// instant. A code is valid for redemption iff it is neither verified nor
// expired.
func (v VerificationCode) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.CreatedAt) > ttl
}

// SendEvent records a single successful dispatch of a verification message
// to an email address. Rows are append-only: they are created when a message
// is sent and bulk-deleted when the recipient's reset window elapses; they
// are never mutated.
type SendEvent struct {
	ID     string    `json:"id"      gorm:"type:char(36);primaryKey"`
	Email  string    `json:"email"   gorm:"type:varchar(255);not null;index:idx_send_events_email"`
	SentAt time.Time `json:"sent_at" gorm:"not null;index:idx_send_events_sent_at"`
}

// TableName returns the database table name for SendEvent.
func (SendEvent) TableName() string { return "send_events" }

// ThrottlePolicy is the single global throttle configuration record. Exactly
// one row exists; it is lazily created with defaults when absent and loaded
// once at startup. The loaded value is passed explicitly through the limiter,
// never read as a hidden global.
//
// Fields:
//   - Limit: max sends per recipient per reset window.
//   - ExpirationWindow: minimum spacing between consecutive sends to the
//     same recipient. It does not govern code lifetime (see config CodeTTL).
//   - ResetWindow: duration after which a recipient's send count resets.
type ThrottlePolicy struct {
	ID               uint          `gorm:"primaryKey"`
	Limit            int           `gorm:"not null;default:3"`
	ExpirationWindow time.Duration `gorm:"not null"`
	ResetWindow      time.Duration `gorm:"not null"`
}

// TableName returns the database table name for ThrottlePolicy.
func (ThrottlePolicy) TableName() string { return "throttle_policies" }

// RevokedToken denylists a refresh token that was invalidated by logout.
// Rows become irrelevant (and eligible for cleanup) once the token's own
// expiry passes.
type RevokedToken struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	TokenID   string    `gorm:"type:char(36);not null;uniqueIndex:ux_revoked_token_id"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName returns the database table name for RevokedToken.
func (RevokedToken) TableName() string { return "revoked_tokens" }
