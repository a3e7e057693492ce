package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lmercadier/revoir/internal/db"
	"github.com/lmercadier/revoir/internal/domain"
)

// SQLiteDigestRepo implements DigestRepo using a SQLite database.
// Digests are keyed by UTC date so the once-per-day guarantee survives
// process restarts.
type SQLiteDigestRepo struct {
	db db.DBTX
}

// NewSQLiteDigestRepo creates a new SQLiteDigestRepo.
func NewSQLiteDigestRepo(conn db.DBTX) *SQLiteDigestRepo {
	return &SQLiteDigestRepo{db: conn}
}

func (r *SQLiteDigestRepo) Get(ctx context.Context, date string) (*domain.Digest, error) {
	query := `SELECT date, items_json, generated_at FROM digests WHERE date = ?`
	var d domain.Digest
	var itemsJSON, generatedAt string
	err := r.db.QueryRowContext(ctx, query, date).Scan(&d.Date, &itemsJSON, &generatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("digest %s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning digest: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &d.Items); err != nil {
		return nil, fmt.Errorf("decoding digest items: %w", err)
	}
	d.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
	return &d, nil
}

func (r *SQLiteDigestRepo) Save(ctx context.Context, d *domain.Digest) error {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return fmt.Errorf("encoding digest items: %w", err)
	}
	query := `INSERT OR REPLACE INTO digests (date, items_json, generated_at) VALUES (?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, d.Date, string(items), d.GeneratedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving digest: %w", err)
	}
	return nil
}
