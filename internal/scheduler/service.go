package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
)

// Service is the read/select and persistence layer over the pure SM-2
// computation. All timestamps are UTC.
type Service struct {
	states repository.ReviewStateRepo
	notes  repository.NoteRepo
}

// NewService creates a scheduler Service over the given repositories.
func NewService(states repository.ReviewStateRepo, notes repository.NoteRepo) *Service {
	return &Service{states: states, notes: notes}
}

// RecordReview loads the scheduling record for (noteID, cycle), applies
// the quality rating and persists the new state. Fails with
// repository.ErrNotFound if the note was never scheduled, and with
// ErrInvalidQuality for ratings outside 0..5.
func (s *Service) RecordReview(ctx context.Context, noteID string, cycle domain.CycleKind, quality int, now time.Time) (*domain.ReviewState, error) {
	state, err := s.states.Get(ctx, noteID, cycle)
	if err != nil {
		return nil, err
	}
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	cfg := domain.ConfigFor(note.Type)

	out, err := Calculate(state, quality, cfg, now)
	if err != nil {
		return nil, err
	}

	state.Easiness = out.Easiness
	state.Repetition = out.Repetition
	state.IntervalHours = out.IntervalHours
	if cfg.SkipRevision {
		// Skip-revision types never acquire a finite due date.
		state.NextDue = nil
	} else {
		due := out.NextDue
		state.NextDue = &due
	}
	reviewed := now
	state.LastReviewed = &reviewed
	state.CompletedCount++
	q := quality
	state.LastQuality = &q
	state.UpdatedAt = now

	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("persisting review: %w", err)
	}
	return state, nil
}

// GetDue returns up to limit due candidates for the cycle, in canonical
// order (importance rank, then earliest next_due with unset first, then
// note ID). Skip-revision types and archive-importance notes are never
// returned. A nil typeFilter selects all types.
func (s *Service) GetDue(ctx context.Context, limit int, cycle domain.CycleKind, typeFilter *domain.NoteType, now time.Time) ([]domain.DueCandidate, error) {
	candidates, err := s.states.ListDue(ctx, cycle, now)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if domain.ConfigFor(c.Type).SkipRevision {
			continue
		}
		if typeFilter != nil && c.Type != *typeFilter {
			continue
		}
		filtered = append(filtered, c)
	}

	CanonicalSort(filtered)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// TriggerImmediate marks the note due now on the given cycle, bypassing
// the normal progression. Used for manual "review now" requests and for
// externally detected content changes. The scheduling record is created
// with type defaults if it does not exist yet. For skip-revision types
// this is a no-op: they never acquire a finite due date.
func (s *Service) TriggerImmediate(ctx context.Context, noteID string, cycle domain.CycleKind, now time.Time) (*domain.ReviewState, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx, noteID, cycle)
	if errors.Is(err, repository.ErrNotFound) {
		return s.states.CreateDefault(ctx, noteID, cycle, note.Type, now)
	}
	if err != nil {
		return nil, err
	}

	if domain.ConfigFor(note.Type).SkipRevision {
		return state, nil
	}

	due := now
	state.NextDue = &due
	state.UpdatedAt = now
	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Postpone pushes the note's next due timestamp forward by the given
// number of hours, counted from the later of its current due time and now.
func (s *Service) Postpone(ctx context.Context, noteID string, cycle domain.CycleKind, hours float64, now time.Time) (*domain.ReviewState, error) {
	state, err := s.states.Get(ctx, noteID, cycle)
	if err != nil {
		return nil, err
	}

	base := now
	if state.NextDue != nil && state.NextDue.After(now) {
		base = *state.NextDue
	}
	due := base.Add(time.Duration(hours * float64(time.Hour)))
	state.NextDue = &due
	state.UpdatedAt = now
	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// DayWorkload is the forecast review load for one UTC calendar day.
type DayWorkload struct {
	Date     string // YYYY-MM-DD
	Retouche int
	Lecture  int
}

// Total returns the combined count across cycles.
func (d DayWorkload) Total() int {
	return d.Retouche + d.Lecture
}

// EstimateWorkload buckets scheduled review counts per UTC calendar day
// across the given horizon, for capacity planning. Overdue reviews are
// counted into the first day.
func (s *Service) EstimateWorkload(ctx context.Context, days int, now time.Time) ([]DayWorkload, error) {
	if days <= 0 {
		days = 7
	}

	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	horizonEnd := dayStart.AddDate(0, 0, days)

	candidates, err := s.states.ListScheduledBetween(ctx, time.Unix(0, 0).UTC(), horizonEnd)
	if err != nil {
		return nil, err
	}

	buckets := make([]DayWorkload, days)
	for i := range buckets {
		buckets[i].Date = dayStart.AddDate(0, 0, i).Format("2006-01-02")
	}

	for _, c := range candidates {
		if domain.ConfigFor(c.Type).SkipRevision || c.State.NextDue == nil {
			continue
		}
		idx := 0
		if c.State.NextDue.After(dayStart) {
			idx = int(c.State.NextDue.Sub(dayStart).Hours() / 24)
		}
		if idx >= days {
			continue
		}
		switch c.State.Cycle {
		case domain.CycleRetouche:
			buckets[idx].Retouche++
		case domain.CycleLecture:
			buckets[idx].Lecture++
		}
	}
	return buckets, nil
}
