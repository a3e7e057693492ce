// Package ingest brings externally modified notes into the scheduling
// engine: a vault importer, an fsnotify watcher, and the collaborator
// that re-schedules changed notes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
)

// Collaborator receives notes whose content changed outside the loop.
type Collaborator interface {
	// Process ensures each note is scheduled and queues changed notes
	// for an immediate retouche pass.
	Process(ctx context.Context, notes []*domain.Note, now time.Time) error
}

// SchedulerCollaborator implements Collaborator on top of the review
// scheduler: every processed note gets a review state per cycle, and
// its retouche cycle is pulled forward to now.
type SchedulerCollaborator struct {
	sched  *scheduler.Service
	states repository.ReviewStateRepo
	logger *slog.Logger
}

func NewSchedulerCollaborator(sched *scheduler.Service, states repository.ReviewStateRepo, logger *slog.Logger) *SchedulerCollaborator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerCollaborator{sched: sched, states: states, logger: logger}
}

func (c *SchedulerCollaborator) Process(ctx context.Context, notes []*domain.Note, now time.Time) error {
	var firstErr error
	for _, note := range notes {
		if err := c.processOne(ctx, note, now); err != nil {
			c.logger.Warn("ingest: note processing failed",
				slog.String("note_id", note.ID),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *SchedulerCollaborator) processOne(ctx context.Context, note *domain.Note, now time.Time) error {
	for _, cycle := range domain.Cycles {
		_, err := c.states.Get(ctx, note.ID, cycle)
		if errors.Is(err, repository.ErrNotFound) {
			_, err = c.states.CreateDefault(ctx, note.ID, cycle, note.Type, now)
		}
		if err != nil {
			return fmt.Errorf("ensuring %s state: %w", cycle, err)
		}
	}

	// Changed content invalidates the current retouche schedule.
	if _, err := c.sched.TriggerImmediate(ctx, note.ID, domain.CycleRetouche, now); err != nil {
		return fmt.Errorf("triggering retouche: %w", err)
	}
	return nil
}
