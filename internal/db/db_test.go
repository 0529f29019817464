package db

import (
	"path/filepath"
	"testing"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	d, err := Open("file:dbmigrate?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	got, err := AppliedVersions(d)
	if err != nil {
		t.Fatalf("applied versions: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("applied = %v, want [1 2]", got)
	}
	if _, err := d.Exec(`INSERT INTO session (id, token, role, username) VALUES (1, 't', 'admin', 'ana')`); err != nil {
		t.Fatalf("session table not usable: %v", err)
	}
}

func TestRollbackLast(t *testing.T) {
	d, err := Open("file:dbrollback?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	got, _ := AppliedVersions(d)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("applied after rollback = %v, want [1]", got)
	}
	// Re-applying is idempotent.
	if err := Migrate(d); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	got, _ = AppliedVersions(d)
	if len(got) != 2 {
		t.Fatalf("applied after migrate = %v", got)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = d.Close()
}
