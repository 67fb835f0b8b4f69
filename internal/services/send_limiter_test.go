package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grammar-azi/user-service/internal/domain"
	"github.com/grammar-azi/user-service/internal/repo"
)

func newLimiterDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.SendEvent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testPolicy() domain.ThrottlePolicy {
	return domain.ThrottlePolicy{
		ID:               1,
		Limit:            3,
		ExpirationWindow: 3 * time.Minute,
		ResetWindow:      24 * time.Hour,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedEvent(t *testing.T, db *gorm.DB, email string, at time.Time) {
	t.Helper()
	if _, err := repo.CreateSendEvent(context.Background(), db, email, at); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func countEvents(t *testing.T, db *gorm.DB, email string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.SendEvent{}).Where("email = ?", email).Count(&n).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func TestAcquire_NoPriorEvents_Allows(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := &SendLimiter{Now: fixedClock(now)}

	if err := l.Acquire(context.Background(), db, "a@x.com", testPolicy()); err != nil {
		t.Fatalf("expected allow for fresh recipient, got %v", err)
	}
	// The limiter must not record anything on success.
	if n := countEvents(t, db, "a@x.com"); n != 0 {
		t.Fatalf("limiter wrote %d events on success, want 0", n)
	}
}

func TestAcquire_Spacing_RejectsWithWait(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	seedEvent(t, db, "a@x.com", now.Add(-1*time.Minute))

	l := &SendLimiter{Now: fixedClock(now)}
	err := l.Acquire(context.Background(), db, "a@x.com", testPolicy())

	te, ok := AsThrottled(err)
	if !ok {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if te.Reason != ThrottleReasonSpacing {
		t.Fatalf("reason = %q, want %q", te.Reason, ThrottleReasonSpacing)
	}
	if !te.HasRetryAfter || te.RetryAfter != 2*time.Minute {
		t.Fatalf("retry after = %v (has=%v), want 2m", te.RetryAfter, te.HasRetryAfter)
	}
	want := "Please, try again in 0:2:0 seconds."
	if te.Message != want {
		t.Fatalf("message = %q, want %q", te.Message, want)
	}
}

func TestAcquire_Spacing_AllowsAtWindowBoundary(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	seedEvent(t, db, "a@x.com", now.Add(-3*time.Minute)) // exactly the window

	l := &SendLimiter{Now: fixedClock(now)}
	if err := l.Acquire(context.Background(), db, "a@x.com", testPolicy()); err != nil {
		t.Fatalf("expected allow at boundary, got %v", err)
	}
}

func TestAcquire_DailyLimit_RejectsWithResetHint(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Three events today; earliest 6h ago.
	seedEvent(t, db, "a@x.com", now.Add(-6*time.Hour))
	seedEvent(t, db, "a@x.com", now.Add(-5*time.Hour))
	seedEvent(t, db, "a@x.com", now.Add(-4*time.Hour))

	l := &SendLimiter{Now: fixedClock(now)}
	err := l.Acquire(context.Background(), db, "a@x.com", testPolicy())

	te, ok := AsThrottled(err)
	if !ok {
		t.Fatalf("expected ThrottledError, got %v", err)
	}
	if te.Reason != ThrottleReasonDailyLimit {
		t.Fatalf("reason = %q, want %q", te.Reason, ThrottleReasonDailyLimit)
	}
	// Earliest event ages out of the 24h reset window in 18h.
	if !te.HasRetryAfter || te.RetryAfter != 18*time.Hour {
		t.Fatalf("retry after = %v (has=%v), want 18h", te.RetryAfter, te.HasRetryAfter)
	}
	want := "You have reached your daily message limit. Please try again in 18:0:0 minutes."
	if te.Message != want {
		t.Fatalf("message = %q, want %q", te.Message, want)
	}
}

func TestAcquire_Reset_PurgesAllEventsAndAllows(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Oldest event is past the reset window: the whole log is wiped, not a
	// sliding window.
	seedEvent(t, db, "a@x.com", now.Add(-25*time.Hour))
	seedEvent(t, db, "a@x.com", now.Add(-24*time.Hour))
	seedEvent(t, db, "a@x.com", now.Add(-23*time.Hour))

	l := &SendLimiter{Now: fixedClock(now)}
	if err := l.Acquire(context.Background(), db, "a@x.com", testPolicy()); err != nil {
		t.Fatalf("expected allow after reset, got %v", err)
	}
	if n := countEvents(t, db, "a@x.com"); n != 0 {
		t.Fatalf("expected full purge, %d events remain", n)
	}
}

func TestAcquire_DailyLimit_CountsCalendarDayNotRolling24h(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Three events late yesterday: within the last 24h but on the previous
	// calendar day. They must not count toward today's limit.
	yesterday := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	seedEvent(t, db, "a@x.com", yesterday)
	seedEvent(t, db, "a@x.com", yesterday.Add(10*time.Minute))
	seedEvent(t, db, "a@x.com", yesterday.Add(20*time.Minute))

	l := &SendLimiter{Now: fixedClock(now)}
	if err := l.Acquire(context.Background(), db, "a@x.com", testPolicy()); err != nil {
		t.Fatalf("expected allow (yesterday's events don't count), got %v", err)
	}
}

func TestAcquire_PerRecipientIsolation(t *testing.T) {
	db := newLimiterDB(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Saturate one recipient; the other must be unaffected.
	seedEvent(t, db, "busy@x.com", now.Add(-3*time.Hour))
	seedEvent(t, db, "busy@x.com", now.Add(-2*time.Hour))
	seedEvent(t, db, "busy@x.com", now.Add(-1*time.Hour))

	l := &SendLimiter{Now: fixedClock(now)}
	if err := l.Acquire(context.Background(), db, "busy@x.com", testPolicy()); err == nil {
		t.Fatalf("expected throttle for saturated recipient")
	}
	if err := l.Acquire(context.Background(), db, "idle@x.com", testPolicy()); err != nil {
		t.Fatalf("expected allow for other recipient, got %v", err)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:0:0"},
		{-5 * time.Second, "0:0:0"},
		{59 * time.Second, "0:0:59"},
		{2 * time.Minute, "0:2:0"},
		{3*time.Hour + time.Minute + time.Second, "3:1:1"},
		{25*time.Hour + time.Minute + time.Second, "25:1:1"}, // no 24h wrap
	}
	for _, c := range cases {
		if got := FormatRemaining(c.in); got != c.want {
			t.Fatalf("FormatRemaining(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
