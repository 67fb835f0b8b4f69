package domain

import (
	"testing"
	"time"
)

func TestVerificationCode_IsExpired(t *testing.T) {
	issued := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	vc := VerificationCode{CreatedAt: issued}
	ttl := 180 * time.Second

	if vc.IsExpired(issued.Add(179*time.Second), ttl) {
		t.Fatalf("code expired before its TTL elapsed")
	}
	// Exactly at the TTL the code is still redeemable.
	if vc.IsExpired(issued.Add(180*time.Second), ttl) {
		t.Fatalf("code expired exactly at the TTL boundary")
	}
	if !vc.IsExpired(issued.Add(181*time.Second), ttl) {
		t.Fatalf("code still valid past its TTL")
	}
}
