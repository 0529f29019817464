package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dairyDispatch/internal/auth"
	"dairyDispatch/models"
	"dairyDispatch/repository"
)

// ErrNoSession is returned when a credential is requested while logged out.
var ErrNoSession = errors.New("no active session")

// Store is the process-wide session context. It reads persisted state once
// on Open and is mutated only through Login and Logout.
type Store struct {
	repo repository.SessionRepositoryI
	now  func() time.Time

	mu      sync.RWMutex
	current models.Session
}

// Open loads the persisted session, if any.
func Open(ctx context.Context, repo repository.SessionRepositoryI) (*Store, error) {
	s := &Store{repo: repo, now: time.Now}
	stored, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		s.current = *stored
	}
	return s, nil
}

// Login persists and activates a session returned by the backend.
func (s *Store) Login(ctx context.Context, sess models.Session) error {
	sess.Token = strings.TrimSpace(sess.Token)
	if sess.Empty() {
		return auth.ErrNoCredential
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Logout clears memory and storage. Memory is cleared even if storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = models.Session{}
	s.mu.Unlock()
	return s.repo.Clear(ctx)
}

// Credential returns the token to attach to requests.
func (s *Store) Credential() (string, error) {
	s.mu.RLock()
	tok := s.current.Token
	s.mu.RUnlock()
	if tok == "" {
		return "", ErrNoSession
	}
	if err := auth.CheckUsable(tok, s.now()); err != nil {
		return "", err
	}
	return tok, nil
}

// Role returns the role of the logged-in user, or "" when logged out.
func (s *Store) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Role
}

// Username is the name used at login, if known.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Username
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.current.Empty()
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
