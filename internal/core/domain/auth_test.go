package domain

import (
	"testing"
	"time"
)

func TestNormalizeServiceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User Manager", "user-manager"},
		{"user-manager", "user-manager"},
		{"  Billing  API ", "billing--api"},
		{"AUTH", "auth"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeServiceName(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClaimSetIsExpired(t *testing.T) {
	now := time.Now()
	claims := &ClaimSet{ExpiresAt: now}

	if !claims.IsExpired(now) {
		t.Error("claims should be expired at exactly exp")
	}
	if claims.IsExpired(now.Add(-time.Nanosecond)) {
		t.Error("claims should be valid just before exp")
	}
	if !claims.IsExpired(now.Add(time.Second)) {
		t.Error("claims should be expired after exp")
	}
	if claims.IsExpired(now.Add(-time.Minute)) {
		t.Error("claims should be valid before exp")
	}
}
