package auth

import (
	"errors"
	"testing"
	"time"

	"dairyDispatch/internal/testutil"
)

const testSecret = "test-secret"

func TestInspectToken_JWTClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := testutil.GenerateJWTHS256(t, testSecret, "ana", "ADMIN", exp)
	info := InspectToken(tok)
	if !info.JWT {
		t.Fatalf("expected JWT to be recognised")
	}
	if info.Subject != "ana" || info.Role != "admin" {
		t.Fatalf("claims mismatch: %+v", info)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Fatalf("exp = %v, want %v", info.ExpiresAt, exp)
	}
}

func TestInspectToken_OpaqueToken(t *testing.T) {
	info := InspectToken("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b")
	if info.JWT || !info.ExpiresAt.IsZero() {
		t.Fatalf("opaque token should carry no info: %+v", info)
	}
	if info.Expired(time.Now()) {
		t.Fatalf("opaque token must never expire locally")
	}
}

func TestCheckUsable(t *testing.T) {
	now := time.Now()
	expired := testutil.GenerateJWTHS256(t, testSecret, "luis", "conductor", now.Add(-time.Minute))
	fresh := testutil.GenerateJWTHS256(t, testSecret, "luis", "conductor", now.Add(time.Minute))
	noExp := testutil.GenerateJWTHS256(t, testSecret, "luis", "conductor", time.Time{})

	if err := CheckUsable("", now); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("empty token: got %v", err)
	}
	if err := CheckUsable(expired, now); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: got %v", err)
	}
	if err := CheckUsable(fresh, now); err != nil {
		t.Fatalf("fresh token: %v", err)
	}
	if err := CheckUsable(noExp, now); err != nil {
		t.Fatalf("token without exp: %v", err)
	}
	if err := CheckUsable("abc123", now); err != nil {
		t.Fatalf("opaque token: %v", err)
	}
}

func TestHeaderValue(t *testing.T) {
	if got := HeaderValue(" abc "); got != "Token abc" {
		t.Fatalf("HeaderValue = %q", got)
	}
}
