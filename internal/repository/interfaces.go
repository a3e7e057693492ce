package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lmercadier/revoir/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type NoteRepo interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	List(ctx context.Context, includeArchive bool) ([]*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	UpdateContent(ctx context.Context, id, content string, now time.Time) error
	ListModifiedSince(ctx context.Context, since time.Time) ([]*domain.Note, error)
	Delete(ctx context.Context, id string) error
}

type ReviewStateRepo interface {
	Get(ctx context.Context, noteID string, cycle domain.CycleKind) (*domain.ReviewState, error)
	Save(ctx context.Context, s *domain.ReviewState) error
	CreateDefault(ctx context.Context, noteID string, cycle domain.CycleKind, t domain.NoteType, now time.Time) (*domain.ReviewState, error)
	ListAll(ctx context.Context, limit int) ([]*domain.ReviewState, error)
	// ListDue returns candidates whose next_due is unset or <= now,
	// joined with note attributes. Archive-importance notes are excluded;
	// skip-revision type filtering is the scheduler's concern.
	ListDue(ctx context.Context, cycle domain.CycleKind, now time.Time) ([]domain.DueCandidate, error)
	// ListScheduledBetween returns candidates with a finite next_due
	// inside [from, to), for workload estimation.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.DueCandidate, error)
}

type DigestRepo interface {
	Get(ctx context.Context, date string) (*domain.Digest, error)
	Save(ctx context.Context, d *domain.Digest) error
}
