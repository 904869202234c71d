package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/swastiapp/swasti-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser creates an account plus its profile row.
func seedUser(t *testing.T, s *Store, id, email, name string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	account := &domain.Account{
		ID:        id,
		Email:     email,
		Name:      name,
		Provider:  "password",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}

	profile := domain.NewProfile(id, name, email, "")
	if err := s.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

// seedTip creates a tip authored by the given user.
func seedTip(t *testing.T, s *Store, id, authorID, title string, createdAt time.Time) {
	t.Helper()
	tip := &domain.Tip{
		ID:          id,
		AuthorID:    authorID,
		Title:       title,
		Description: "a home remedy",
		Category:    "Immunity Boosting",
		Benefits:    []string{"feels good"},
		CreatedAt:   createdAt,
	}
	if err := s.CreateTip(context.Background(), tip); err != nil {
		t.Fatalf("seed tip %s: %v", id, err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"accounts", "auth_sessions", "profiles", "tips",
		"comments", "likes", "saved_tips", "follows",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s1, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}
