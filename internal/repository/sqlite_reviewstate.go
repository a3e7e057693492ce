package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lmercadier/revoir/internal/db"
	"github.com/lmercadier/revoir/internal/domain"
)

const reviewStateColumns = `note_id, cycle, easiness, repetition, interval_hours,
		next_due, last_reviewed, completed_count, last_quality, created_at, updated_at`

const reviewStateColumnsAliased = `r.note_id, r.cycle, r.easiness, r.repetition, r.interval_hours,
		r.next_due, r.last_reviewed, r.completed_count, r.last_quality, r.created_at, r.updated_at`

// SQLiteReviewStateRepo implements ReviewStateRepo using a SQLite database.
// Each Save is a single-row upsert keyed by (note_id, cycle); that row is
// the only state shared with the outside world, so per-note commits are
// the unit of crash recovery.
type SQLiteReviewStateRepo struct {
	db db.DBTX
}

// NewSQLiteReviewStateRepo creates a new SQLiteReviewStateRepo.
func NewSQLiteReviewStateRepo(conn db.DBTX) *SQLiteReviewStateRepo {
	return &SQLiteReviewStateRepo{db: conn}
}

func (r *SQLiteReviewStateRepo) Get(ctx context.Context, noteID string, cycle domain.CycleKind) (*domain.ReviewState, error) {
	query := `SELECT ` + reviewStateColumns + ` FROM review_states WHERE note_id = ? AND cycle = ?`
	row := r.db.QueryRowContext(ctx, query, noteID, string(cycle))
	s, err := scanReviewState(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("review state %s/%s: %w", noteID, cycle, ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteReviewStateRepo) Save(ctx context.Context, s *domain.ReviewState) error {
	query := `INSERT OR REPLACE INTO review_states (` + reviewStateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.NoteID,
		string(s.Cycle),
		s.Easiness,
		s.Repetition,
		s.IntervalHours,
		nullableTimeToString(s.NextDue, time.RFC3339),
		nullableTimeToString(s.LastReviewed, time.RFC3339),
		s.CompletedCount,
		nullableIntToValue(s.LastQuality),
		s.CreatedAt.UTC().Format(time.RFC3339),
		s.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving review state: %w", err)
	}
	return nil
}

func (r *SQLiteReviewStateRepo) CreateDefault(ctx context.Context, noteID string, cycle domain.CycleKind, t domain.NoteType, now time.Time) (*domain.ReviewState, error) {
	s := domain.NewReviewState(noteID, cycle, t, now)
	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteReviewStateRepo) ListAll(ctx context.Context, limit int) ([]*domain.ReviewState, error) {
	query := `SELECT ` + reviewStateColumns + ` FROM review_states ORDER BY note_id, cycle`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing review states: %w", err)
	}
	defer rows.Close()

	var states []*domain.ReviewState
	for rows.Next() {
		s, err := scanReviewState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review states: %w", err)
	}
	return states, nil
}

func (r *SQLiteReviewStateRepo) ListDue(ctx context.Context, cycle domain.CycleKind, now time.Time) ([]domain.DueCandidate, error) {
	query := `SELECT ` + reviewStateColumnsAliased + `, n.title, n.type, n.importance
		FROM review_states r
		JOIN notes n ON r.note_id = n.id
		WHERE r.cycle = ?
		  AND n.importance != 'archive'
		  AND (r.next_due IS NULL OR r.next_due <= ?)`
	rows, err := r.db.QueryContext(ctx, query, string(cycle), now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing due candidates: %w", err)
	}
	defer rows.Close()
	return scanDueCandidates(rows)
}

func (r *SQLiteReviewStateRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.DueCandidate, error) {
	query := `SELECT ` + reviewStateColumnsAliased + `, n.title, n.type, n.importance
		FROM review_states r
		JOIN notes n ON r.note_id = n.id
		WHERE n.importance != 'archive'
		  AND r.next_due IS NOT NULL
		  AND r.next_due >= ? AND r.next_due < ?`
	rows, err := r.db.QueryContext(ctx, query,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing scheduled candidates: %w", err)
	}
	defer rows.Close()
	return scanDueCandidates(rows)
}

func scanReviewState(row rowScanner) (*domain.ReviewState, error) {
	var s domain.ReviewState
	var cycle, createdAt, updatedAt string
	var nextDue, lastReviewed sql.NullString
	var lastQuality sql.NullInt64
	err := row.Scan(
		&s.NoteID,
		&cycle,
		&s.Easiness,
		&s.Repetition,
		&s.IntervalHours,
		&nextDue,
		&lastReviewed,
		&s.CompletedCount,
		&lastQuality,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning review state: %w", err)
	}
	s.Cycle = domain.CycleKind(cycle)
	s.NextDue = parseNullableTime(nextDue, time.RFC3339)
	s.LastReviewed = parseNullableTime(lastReviewed, time.RFC3339)
	if lastQuality.Valid {
		q := int(lastQuality.Int64)
		s.LastQuality = &q
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

func scanDueCandidates(rows *sql.Rows) ([]domain.DueCandidate, error) {
	var candidates []domain.DueCandidate
	for rows.Next() {
		var s domain.ReviewState
		var cycle, createdAt, updatedAt, title, noteType, importance string
		var nextDue, lastReviewed sql.NullString
		var lastQuality sql.NullInt64
		err := rows.Scan(
			&s.NoteID,
			&cycle,
			&s.Easiness,
			&s.Repetition,
			&s.IntervalHours,
			&nextDue,
			&lastReviewed,
			&s.CompletedCount,
			&lastQuality,
			&createdAt,
			&updatedAt,
			&title,
			&noteType,
			&importance,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning due candidate: %w", err)
		}
		s.Cycle = domain.CycleKind(cycle)
		s.NextDue = parseNullableTime(nextDue, time.RFC3339)
		s.LastReviewed = parseNullableTime(lastReviewed, time.RFC3339)
		if lastQuality.Valid {
			q := int(lastQuality.Int64)
			s.LastQuality = &q
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		candidates = append(candidates, domain.DueCandidate{
			State:      s,
			Title:      title,
			Type:       domain.NoteType(noteType),
			Importance: domain.Importance(importance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due candidates: %w", err)
	}
	return candidates, nil
}
