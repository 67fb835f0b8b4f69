package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateThenGet(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, "a@x.com", "/api/v1/users/send-verification-code", "k1", 200, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != 200 {
		t.Fatalf("status = %d, want 200", rec.Status)
	}

	got, err := GetIdempotency(context.Background(), db, "a@x.com", "/api/v1/users/send-verification-code", "k1", now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("got row %s, want %s", got.ID, rec.ID)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newTestDB(t)

	if _, err := CreateIdempotency(context.Background(), db, "a@x.com", "scope", "k1", 200, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateIdempotency(context.Background(), db, "a@x.com", "scope", "k1", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	// Same key under a different scope or email is a distinct record.
	if _, err := CreateIdempotency(context.Background(), db, "a@x.com", "other", "k1", 200, time.Hour); err != nil {
		t.Fatalf("different scope: %v", err)
	}
	if _, err := CreateIdempotency(context.Background(), db, "b@x.com", "scope", "k1", 200, time.Hour); err != nil {
		t.Fatalf("different email: %v", err)
	}
}

func TestIdempotency_ExpiredAndEmptyEmail(t *testing.T) {
	db := newTestDB(t)

	if _, err := CreateIdempotency(context.Background(), db, "a@x.com", "scope", "k1", 200, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	future := time.Now().UTC().Add(time.Hour)
	if _, err := GetIdempotency(context.Background(), db, "a@x.com", "scope", "k1", future); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record: got %v, want ErrNotFound", err)
	}
	if _, err := GetIdempotency(context.Background(), db, "  ", "scope", "k1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank email: got %v, want ErrNotFound", err)
	}
}
