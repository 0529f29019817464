package repository

import (
	"context"
	"testing"

	"dairyDispatch/internal/db"
	"dairyDispatch/models"
)

func TestSessionRepository_SaveLoadClear(t *testing.T) {
	d, err := db.Open("file:sessionrepo?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repo := NewSessionRepository(d)
	ctx := context.Background()

	// Empty store
	s, err := repo.Load(ctx)
	if err != nil || s != nil {
		t.Fatalf("load empty: %v %+v", err, s)
	}

	// Save
	if err := repo.Save(ctx, models.Session{Token: "abc123", Role: models.RoleAdmin, Username: "ana"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err = repo.Load(ctx)
	if err != nil || s == nil {
		t.Fatalf("load: %v %+v", err, s)
	}
	if s.Token != "abc123" || s.Role != models.RoleAdmin || s.Username != "ana" {
		t.Fatalf("unexpected session: %+v", s)
	}

	// Save again overwrites the single row
	if err := repo.Save(ctx, models.Session{Token: "def456", Role: models.RoleDriver}); err != nil {
		t.Fatalf("save overwrite: %v", err)
	}
	s, _ = repo.Load(ctx)
	if s.Token != "def456" || s.Role != models.RoleDriver || s.Username != "" {
		t.Fatalf("overwrite not applied: %+v", s)
	}

	// Clear
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	s, err = repo.Load(ctx)
	if err != nil || s != nil {
		t.Fatalf("expected cleared session, got %+v err=%v", s, err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
}

func TestSessionRepository_RejectsEmptyToken(t *testing.T) {
	d, err := db.Open("file:sessionrepoempty?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := NewSessionRepository(d).Save(context.Background(), models.Session{Token: "  "}); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
