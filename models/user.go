package models

import "strings"

// Role decides which screens a user may reach.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "conductor"
)

// ParseRole normalizes a stored role string. Unknown values yield "".
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDriver:
		return RoleDriver
	default:
		return ""
	}
}

// Session is the persisted credential and role of the logged-in user.
type Session struct {
	Token    string `db:"token" json:"token"`
	Role     Role   `db:"role" json:"rol"`
	Username string `db:"username" json:"username,omitempty"`
}

// Empty reports whether there is no credential.
func (s Session) Empty() bool { return strings.TrimSpace(s.Token) == "" }
