package testutil

import (
	"database/sql"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"dairyDispatch/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so every pooled connection sees the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT with subject, role and an optional expiry
// (zero exp means no exp claim).
func GenerateJWTHS256(t *testing.T, secret, subject, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"rol": role,
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
