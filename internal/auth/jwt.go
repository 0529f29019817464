package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Scheme is the Authorization header scheme the backend expects.
const Scheme = "Token"

var (
	// ErrNoCredential means no credential is stored.
	ErrNoCredential = errors.New("no stored credential")
	// ErrTokenExpired means the stored credential is a JWT whose exp has passed.
	ErrTokenExpired = errors.New("stored credential has expired")
)

// TokenInfo is what can be learned about a credential without the signing key.
// Opaque tokens (the backend's default) carry no information; JWTs expose
// subject, role and expiry.
type TokenInfo struct {
	JWT       bool
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// InspectToken reads the claims of a JWT credential without verifying its
// signature; verification is the backend's job. Anything that does not
// parse as a JWT is treated as an opaque token.
func InspectToken(token string) TokenInfo {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return TokenInfo{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}
	info := TokenInfo{JWT: true}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	for _, k := range []string{"rol", "role", "kind"} {
		if v, ok := claims[k].(string); ok && v != "" {
			info.Role = strings.ToLower(v)
			break
		}
	}
	return info
}

// CheckUsable reports whether token can be attached to a request.
func CheckUsable(token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return ErrNoCredential
	}
	if InspectToken(token).Expired(now) {
		return ErrTokenExpired
	}
	return nil
}

// HeaderValue formats the Authorization header for token.
func HeaderValue(token string) string {
	return Scheme + " " + strings.TrimSpace(token)
}
