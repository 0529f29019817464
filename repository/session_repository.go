package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dairyDispatch/models"
)

// SessionRepository stores the single active session in SQLite.
// It plays the role a browser's persistent storage plays for a web client:
// the credential survives restarts until an explicit logout.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns the stored session, or nil when there is none.
func (r *SessionRepository) Load(ctx context.Context) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s models.Session
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT token, role, username FROM session WHERE id = 1`).Scan(&s.Token, &role, &s.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Role = models.ParseRole(role)
	if s.Empty() {
		return nil, nil
	}
	return &s, nil
}

// Save replaces the stored session.
func (r *SessionRepository) Save(ctx context.Context, s models.Session) error {
	if s.Empty() {
		return errors.New("session token is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO session (id, token, role, username, saved_at) VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET token = excluded.token, role = excluded.role,
  username = excluded.username, saved_at = excluded.saved_at`,
		strings.TrimSpace(s.Token), string(s.Role), s.Username)
	return err
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (r *SessionRepository) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}

var _ SessionRepositoryI = (*SessionRepository)(nil)
