package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/empoweringtalks/portal-go/internal/store"
)

func setupSchedulerTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			user_id INTEGER,
			ip_address TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE password_reset_tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			used BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	return db
}

func TestStartStop(t *testing.T) {
	db := setupSchedulerTestDB(t)
	s := New(db, slog.Default(), 90*24*time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestPruneEvents(t *testing.T) {
	db := setupSchedulerTestDB(t)

	_, err := db.Exec(`INSERT INTO events (level, category, message, created_at)
		VALUES ('info', 'system', 'ancient', ?), ('info', 'system', 'recent', ?)`,
		time.Now().Add(-100*24*time.Hour), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	s := New(db, slog.Default(), 90*24*time.Hour)
	if err := s.pruneEvents(); err != nil {
		t.Fatalf("pruneEvents: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Message != "recent" {
		t.Errorf("remaining events = %+v, want only the recent one", events)
	}
}

func TestPurgeResetTokens(t *testing.T) {
	db := setupSchedulerTestDB(t)
	ctx := context.Background()
	queries := store.New(db)

	mustCreate := func(token string, expires time.Time, used bool) {
		t.Helper()
		if err := queries.CreatePasswordResetToken(ctx, store.CreatePasswordResetTokenParams{
			Token: token, UserID: 1, ExpiresAt: expires,
		}); err != nil {
			t.Fatal(err)
		}
		if used {
			if err := queries.MarkPasswordResetTokenUsed(ctx, token); err != nil {
				t.Fatal(err)
			}
		}
	}

	mustCreate("expired", time.Now().Add(-time.Hour), false)
	mustCreate("spent", time.Now().Add(time.Hour), true)
	mustCreate("live", time.Now().Add(time.Hour), false)

	s := New(db, slog.Default(), time.Hour)
	if err := s.purgeResetTokens(); err != nil {
		t.Fatalf("purgeResetTokens: %v", err)
	}

	if _, err := queries.GetPasswordResetToken(ctx, "live"); err != nil {
		t.Errorf("live token was purged: %v", err)
	}
	if _, err := queries.GetPasswordResetToken(ctx, "expired"); err != sql.ErrNoRows {
		t.Errorf("expired token survived: err = %v", err)
	}
	if _, err := queries.GetPasswordResetToken(ctx, "spent"); err != sql.ErrNoRows {
		t.Errorf("used token survived: err = %v", err)
	}
}
