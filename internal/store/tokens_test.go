package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/db"
)

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	if err := RevokeToken(ctx, database, "jti-logout", exp); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Logging out twice with the same token is harmless.
	if err := RevokeToken(ctx, database, "jti-logout", exp); err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}

	tests := []struct {
		jti  string
		want bool
	}{
		{"jti-logout", true},
		{"jti-other", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := IsTokenRevoked(ctx, database, tt.jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked(%q): %v", tt.jti, err)
		}
		if got != tt.want {
			t.Errorf("IsTokenRevoked(%q) = %v, want %v", tt.jti, got, tt.want)
		}
	}
}

func TestRevokeTokenKeepsLaterExpiry(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	RevokeToken(ctx, database, "jti-1", now.Add(2*time.Hour))
	RevokeToken(ctx, database, "jti-1", now.Add(-time.Hour))

	n, err := PurgeExpiredTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeExpiredTokens: %v", err)
	}
	if n != 0 {
		t.Errorf("expected the later expiry to survive, purged %d", n)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	RevokeToken(ctx, database, "old", now.Add(-time.Hour))
	RevokeToken(ctx, database, "live", now.Add(time.Hour))

	n, err := PurgeExpiredTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeExpiredTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged token, got %d", n)
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "live"); !revoked {
		t.Error("expected live revocation to survive purge")
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "old"); revoked {
		t.Error("expected expired revocation to be purged")
	}
}

func TestRevokeTokenRequiresID(t *testing.T) {
	database := db.NewTestDB(t)
	if err := RevokeToken(context.Background(), database, "", time.Now()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
