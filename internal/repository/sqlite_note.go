package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lmercadier/revoir/internal/db"
	"github.com/lmercadier/revoir/internal/domain"
)

const noteColumns = `id, title, type, importance, content, created_at, updated_at`

// SQLiteNoteRepo implements NoteRepo using a SQLite database.
// It doubles as the engine's content store: the worker reads and
// rewrites note content through it.
type SQLiteNoteRepo struct {
	db db.DBTX
}

// NewSQLiteNoteRepo creates a new SQLiteNoteRepo.
func NewSQLiteNoteRepo(conn db.DBTX) *SQLiteNoteRepo {
	return &SQLiteNoteRepo{db: conn}
}

func (r *SQLiteNoteRepo) Create(ctx context.Context, n *domain.Note) error {
	query := `INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Title,
		string(n.Type),
		string(n.Importance),
		n.Content,
		n.CreatedAt.UTC().Format(time.RFC3339),
		n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

func (r *SQLiteNoteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ?`
	return r.scanNote(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteNoteRepo) List(ctx context.Context, includeArchive bool) ([]*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	if !includeArchive {
		query += ` WHERE importance != 'archive'`
	}
	query += ` ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()
	return r.scanNotes(rows)
}

func (r *SQLiteNoteRepo) Update(ctx context.Context, n *domain.Note) error {
	query := `UPDATE notes SET title = ?, type = ?, importance = ?, content = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		n.Title,
		string(n.Type),
		string(n.Importance),
		n.Content,
		n.UpdatedAt.UTC().Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking note update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", n.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteNoteRepo) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	query := `UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, content, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating note content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking content update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteNoteRepo) ListModifiedSince(ctx context.Context, since time.Time) ([]*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE updated_at > ? ORDER BY updated_at`
	rows, err := r.db.QueryContext(ctx, query, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing modified notes: %w", err)
	}
	defer rows.Close()
	return r.scanNotes(rows)
}

func (r *SQLiteNoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking note delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteNoteRepo) scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	var noteType, importance, createdAt, updatedAt string
	err := row.Scan(&n.ID, &n.Title, &noteType, &importance, &n.Content, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	n.Type = domain.NoteType(noteType)
	n.Importance = domain.Importance(importance)
	n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	n.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &n, nil
}

func (r *SQLiteNoteRepo) scanNotes(rows *sql.Rows) ([]*domain.Note, error) {
	var notes []*domain.Note
	for rows.Next() {
		n, err := r.scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}
