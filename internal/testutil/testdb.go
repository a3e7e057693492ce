package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lmercadier/revoir/internal/db"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// SeedNote inserts a note with sensible defaults for tests.
func SeedNote(t *testing.T, database *sql.DB, id, title string, noteType domain.NoteType, importance domain.Importance) *domain.Note {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := &domain.Note{
		ID:         id,
		Title:      title,
		Type:       noteType,
		Importance: importance,
		Content:    "# " + title + "\n\nSome content.\n",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	repo := repository.NewSQLiteNoteRepo(database)
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seeding note %s: %v", id, err)
	}
	return n
}
