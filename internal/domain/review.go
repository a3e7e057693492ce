package domain

import "time"

// ReviewState is one scheduling record. Each note carries one
// independent ReviewState per cycle kind.
type ReviewState struct {
	NoteID         string
	Cycle          CycleKind
	Easiness       float64 // always within [1.3, 2.5]
	Repetition     int
	IntervalHours  float64
	NextDue        *time.Time // nil = never scheduled, or skip-revision type
	LastReviewed   *time.Time
	CompletedCount int
	LastQuality    *int // 0-5, nil before the first review
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReviewState creates a fresh scheduling record with type-derived
// defaults. Skip-revision types start (and stay) without a due date;
// all others are due immediately.
func NewReviewState(noteID string, cycle CycleKind, t NoteType, now time.Time) *ReviewState {
	cfg := ConfigFor(t)
	s := &ReviewState{
		NoteID:    noteID,
		Cycle:     cycle,
		Easiness:  cfg.InitialEasiness,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !cfg.SkipRevision {
		due := now
		s.NextDue = &due
	}
	return s
}

// DueCandidate is a joined view of a review state with the note
// attributes selection needs, loaded by the repository for scheduling.
type DueCandidate struct {
	State      ReviewState
	Title      string
	Type       NoteType
	Importance Importance
}
