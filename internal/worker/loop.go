package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/content"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/ingest"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
)

const dateLayout = "2006-01-02"

// Clock returns the current time; injected for tests.
type Clock func() time.Time

// SleepFunc suspends the loop, returning early when ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration)

func defaultSleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// PausePredicate is an extension point in the pause decision: any
// predicate returning true pauses the loop with the given reason
// (host CPU pressure, upstream rate limits, and so on).
type PausePredicate func(Snapshot) (bool, string)

// Deps are the loop's collaborators. Sched, Pipeline, Notes and States
// are required; the rest are optional.
type Deps struct {
	Sched    *scheduler.Service
	Pipeline *analysis.Pipeline
	Notes    repository.NoteRepo
	States   repository.ReviewStateRepo
	Digests  repository.DigestRepo
	Collab   ingest.Collaborator

	// RefreshIndex rebuilds the external read index (vault re-import).
	RefreshIndex func(ctx context.Context) error

	Logger          *slog.Logger
	Observers       []Observer
	PausePredicates []PausePredicate
}

// Loop is the single-goroutine cooperative control loop. Exactly one
// Loop instance may run against a given repository; Pause, Resume,
// Stop and Status are safe to call from other goroutines.
type Loop struct {
	opts Options
	deps Deps

	clock Clock
	sleep SleepFunc

	mu             sync.Mutex
	state          domain.WorkerState
	pauseRequested bool
	stopRequested  bool
	stats          Stats
	session        *Session
	pauseReason    string

	// Housekeeping timers, owned by the loop goroutine.
	lastJanitor     time.Time
	lastIndexSweep  time.Time
	lastChangeSweep time.Time
	lastDigestDate  string

	// Notes the loop itself wrote since the last change sweep; the
	// sweep skips these so the loop's own writes don't re-trigger it.
	selfTouched map[string]bool
}

// New creates a Loop. Options are normalized; a nil clock uses
// time.Now.
func New(opts Options, deps Deps, clock Clock, sleep SleepFunc) *Loop {
	if clock == nil {
		clock = time.Now
	}
	if sleep == nil {
		sleep = defaultSleep
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Loop{
		opts:        opts.Normalize(),
		deps:        deps,
		clock:       clock,
		sleep:       sleep,
		state:       domain.WorkerIdle,
		selfTouched: make(map[string]bool),
	}
}

// Run drives the loop until Stop is called or ctx is cancelled. Any
// failure inside one iteration is caught, counted and followed by a
// backoff sleep; Run itself only returns on stop.
func (l *Loop) Run(ctx context.Context) error {
	now := l.clock()
	l.mu.Lock()
	l.stats.LastResetDate = now.UTC().Format(dateLayout)
	l.mu.Unlock()
	l.lastChangeSweep = now
	l.setState(domain.WorkerRunning)

	for {
		if ctx.Err() != nil || l.isStopRequested() {
			l.setState(domain.WorkerStopped)
			return nil
		}
		l.iterate(ctx)
	}
}

// Stop requests a cooperative shutdown; the in-flight note finishes
// before the loop exits.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopRequested = true
	l.mu.Unlock()
}

// Pause suspends processing at the next iteration boundary.
func (l *Loop) Pause() {
	l.mu.Lock()
	l.pauseRequested = true
	l.mu.Unlock()
}

// Resume lifts a pause requested via Pause. A daily-budget pause
// clears on its own at the next UTC day boundary.
func (l *Loop) Resume() {
	l.mu.Lock()
	l.pauseRequested = false
	l.mu.Unlock()
}

func (l *Loop) isStopRequested() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopRequested
}

func (l *Loop) setState(next domain.WorkerState) {
	l.mu.Lock()
	prev := l.state
	if prev == next {
		l.mu.Unlock()
		return
	}
	l.state = next
	l.mu.Unlock()

	for _, o := range l.deps.Observers {
		o.OnStateChange(prev, next)
	}
}

// iterate runs one pass of the control loop. Panics are contained
// here so a single bad note never halts the loop.
func (l *Loop) iterate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.recordError(fmt.Errorf("iteration panic: %v", r))
			l.sleep(ctx, l.opts.SleepOnError)
		}
	}()

	now := l.clock()
	l.resetDailyIfNeeded(now)

	if paused, reason := l.pauseDecision(now); paused {
		l.mu.Lock()
		l.pauseReason = reason
		l.mu.Unlock()
		l.setState(domain.WorkerPaused)
		l.sleep(ctx, l.opts.SleepOnError)
		return
	}
	l.mu.Lock()
	l.pauseReason = ""
	l.mu.Unlock()
	l.setState(domain.WorkerRunning)

	l.runHousekeeping(ctx, now)
	l.maybeGenerateDigest(ctx, now)

	worked := l.runRetoucheBatch(ctx)
	worked = l.runLectureBatch(ctx) || worked

	if !worked {
		l.setState(domain.WorkerIdle)
		l.sleep(ctx, min(l.opts.SleepWhenIdle, l.opts.IngestionInterval))
	}
}

func (l *Loop) resetDailyIfNeeded(now time.Time) {
	today := now.UTC().Format(dateLayout)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stats.LastResetDate == today {
		return
	}
	l.stats.ReviewsToday = 0
	l.stats.RetouchesToday = 0
	l.stats.ErrorsToday = 0
	l.stats.LastResetDate = today
}

func (l *Loop) pauseDecision(now time.Time) (bool, string) {
	l.mu.Lock()
	requested := l.pauseRequested
	reviews := l.stats.ReviewsToday
	l.mu.Unlock()

	if requested {
		return true, "pause requested"
	}
	if reviews >= l.opts.MaxDailyReviews {
		return true, "daily review budget exhausted"
	}
	snap := l.Status(now)
	for _, pred := range l.deps.PausePredicates {
		if pause, reason := pred(snap); pause {
			return true, reason
		}
	}
	return false, ""
}

func (l *Loop) runHousekeeping(ctx context.Context, now time.Time) {
	if now.Sub(l.lastJanitor) >= l.opts.JanitorInterval {
		l.lastJanitor = now
		if err := l.janitorSweep(ctx, now); err != nil {
			l.recordError(fmt.Errorf("janitor sweep: %w", err))
		}
	}
	if l.deps.RefreshIndex != nil && now.Sub(l.lastIndexSweep) >= l.opts.IndexRefreshInterval {
		l.lastIndexSweep = now
		if err := l.deps.RefreshIndex(ctx); err != nil {
			l.recordError(fmt.Errorf("index refresh: %w", err))
		}
	}
	if l.deps.Collab != nil && now.Sub(l.lastChangeSweep) >= l.opts.IngestionInterval {
		since := l.lastChangeSweep
		l.lastChangeSweep = now
		if err := l.changeSweep(ctx, since, now); err != nil {
			l.recordError(fmt.Errorf("change sweep: %w", err))
		}
	}
}

// janitorSweep is the hygiene pass: every non-archive note gets a
// scheduling record per cycle. States of deleted notes go away with
// the note row (FK cascade), so creation is all that is left to do.
func (l *Loop) janitorSweep(ctx context.Context, now time.Time) error {
	notes, err := l.deps.Notes.List(ctx, false)
	if err != nil {
		return err
	}
	for _, note := range notes {
		for _, cycle := range domain.Cycles {
			_, err := l.deps.States.Get(ctx, note.ID, cycle)
			if errors.Is(err, repository.ErrNotFound) {
				_, err = l.deps.States.CreateDefault(ctx, note.ID, cycle, note.Type, now)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// changeSweep forwards externally modified notes to the ingestion
// collaborator. The loop's own content writes are excluded.
func (l *Loop) changeSweep(ctx context.Context, since, now time.Time) error {
	modified, err := l.deps.Notes.ListModifiedSince(ctx, since)
	if err != nil {
		return err
	}

	l.mu.Lock()
	external := modified[:0]
	for _, n := range modified {
		if !l.selfTouched[n.ID] {
			external = append(external, n)
		}
	}
	l.selfTouched = make(map[string]bool)
	l.mu.Unlock()

	if len(external) == 0 {
		return nil
	}
	return l.deps.Collab.Process(ctx, external, now)
}

func (l *Loop) maybeGenerateDigest(ctx context.Context, now time.Time) {
	if l.deps.Digests == nil || now.Hour() != l.opts.DigestHour {
		return
	}
	today := now.UTC().Format(dateLayout)
	if l.lastDigestDate == today {
		return
	}

	// A digest already persisted for today (e.g. before a restart)
	// still counts as generated.
	if _, err := l.deps.Digests.Get(ctx, today); err == nil {
		l.lastDigestDate = today
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		l.recordError(fmt.Errorf("digest lookup: %w", err))
		return
	}

	digest, err := l.buildDigest(ctx, today, now)
	if err != nil {
		l.recordError(fmt.Errorf("digest generation: %w", err))
		return
	}
	if err := l.deps.Digests.Save(ctx, digest); err != nil {
		l.recordError(fmt.Errorf("digest save: %w", err))
		return
	}
	l.lastDigestDate = today
	l.deps.Logger.Info("daily digest generated",
		slog.String("date", today),
		slog.Int("items", len(digest.Items)))
}

func (l *Loop) buildDigest(ctx context.Context, date string, now time.Time) (*domain.Digest, error) {
	due, err := l.deps.Sched.GetDue(ctx, l.opts.DigestMaxItems, domain.CycleLecture, nil, now)
	if err != nil {
		return nil, err
	}

	digest := &domain.Digest{Date: date, GeneratedAt: now}
	for _, cand := range due {
		digest.Items = append(digest.Items, domain.DigestItem{
			NoteID:     cand.State.NoteID,
			Title:      cand.Title,
			Type:       cand.Type,
			Importance: cand.Importance,
			Cycle:      domain.CycleLecture,
			DueSince:   cand.State.NextDue,
		})
	}
	return digest, nil
}

// runRetoucheBatch processes due retouche-cycle notes under the quiet
// hours window and the daily retouche budget. Returns whether any
// note was processed.
func (l *Loop) runRetoucheBatch(ctx context.Context) bool {
	now := l.clock()
	if l.inQuietHours(now) {
		return false
	}
	l.mu.Lock()
	remaining := l.opts.MaxDailyRetouches - l.stats.RetouchesToday
	l.mu.Unlock()
	if remaining <= 0 {
		return false
	}

	batch := min(l.opts.RetoucheBatchSize, remaining)
	due, err := l.deps.Sched.GetDue(ctx, batch, domain.CycleRetouche, nil, now)
	if err != nil {
		l.recordError(fmt.Errorf("retouche due query: %w", err))
		return false
	}
	if len(due) == 0 {
		return false
	}

	for i, cand := range due {
		if ctx.Err() != nil || l.isStopRequested() {
			break
		}
		if err := l.processNote(ctx, cand, domain.CycleRetouche); err != nil {
			l.recordError(fmt.Errorf("retouche %s: %w", cand.State.NoteID, err))
		}
		if i < len(due)-1 {
			l.sleep(ctx, l.opts.SleepBetweenReviews)
		}
	}
	return true
}

// runLectureBatch processes due lecture-cycle notes under the daily
// review budget, hard-stopping when the session time box elapses.
func (l *Loop) runLectureBatch(ctx context.Context) bool {
	now := l.clock()
	l.mu.Lock()
	remaining := l.opts.MaxDailyReviews - l.stats.ReviewsToday
	l.mu.Unlock()
	if remaining <= 0 {
		return false
	}

	batch := min(lectureBatchCap, remaining)
	due, err := l.deps.Sched.GetDue(ctx, batch, domain.CycleLecture, nil, now)
	if err != nil {
		l.recordError(fmt.Errorf("lecture due query: %w", err))
		return false
	}
	if len(due) == 0 {
		return false
	}

	session := Session{StartedAt: now}
	l.mu.Lock()
	l.session = &session
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.session = nil
		l.mu.Unlock()
	}()

	budget := time.Duration(l.opts.MaxSessionMinutes) * time.Minute
	for i, cand := range due {
		if ctx.Err() != nil || l.isStopRequested() {
			break
		}
		if session.Elapsed(l.clock()) >= budget {
			l.deps.Logger.Info("lecture session time box reached",
				slog.Int("processed", i),
				slog.Int("due", len(due)))
			break
		}
		if err := l.processNote(ctx, cand, domain.CycleLecture); err != nil {
			l.recordError(fmt.Errorf("lecture %s: %w", cand.State.NoteID, err))
		}
		if i < len(due)-1 {
			l.sleep(ctx, l.opts.SleepBetweenReviews)
		}
	}
	return true
}

// processNote runs one note through analysis, applies auto-approved
// actions (retouche only), and reports the resulting quality back to
// the scheduler.
func (l *Loop) processNote(ctx context.Context, cand domain.DueCandidate, cycle domain.CycleKind) error {
	now := l.clock()
	note, err := l.deps.Notes.GetByID(ctx, cand.State.NoteID)
	if errors.Is(err, repository.ErrNotFound) {
		l.deps.Logger.Warn("due note no longer exists, skipping",
			slog.String("note_id", cand.State.NoteID))
		return nil
	}
	if err != nil {
		return err
	}

	nc := analysis.BuildContext(note)
	result := l.deps.Pipeline.Analyze(ctx, nc)

	applied := 0
	if cycle == domain.CycleRetouche {
		analysis.MarkAutoApply(result, l.opts.Policy)
		updated := note.Content
		for i := range result.Actions {
			if !result.Actions[i].Applied {
				continue
			}
			out, applyErr := content.ApplyAction(updated, result.Actions[i])
			if applyErr != nil {
				result.Actions[i].Applied = false
				l.deps.Logger.Warn("action application failed",
					slog.String("note_id", note.ID),
					slog.String("kind", string(result.Actions[i].Kind)),
					slog.String("error", applyErr.Error()))
				continue
			}
			updated = out
			applied++
		}
		if updated != note.Content {
			if err := l.deps.Notes.UpdateContent(ctx, note.ID, updated, now); err != nil {
				return fmt.Errorf("writing content: %w", err)
			}
			l.mu.Lock()
			l.selfTouched[note.ID] = true
			l.mu.Unlock()
			note.Content = updated
			nc = analysis.BuildContext(note)
		}
	}

	score := analysis.QualityScore(nc, result)
	quality := analysis.MapToCycleQuality(score)

	if _, err := l.deps.Sched.RecordReview(ctx, note.ID, cycle, quality, now); err != nil {
		return fmt.Errorf("recording review: %w", err)
	}

	l.mu.Lock()
	l.stats.ReviewsToday++
	l.stats.ReviewsTotal++
	if cycle == domain.CycleRetouche {
		l.stats.RetouchesToday++
		l.stats.RetouchesTotal++
	}
	l.stats.ActionsApplied += applied
	l.stats.ActionsPending += result.PendingCount()
	reviewedAt := now
	l.stats.LastReviewAt = &reviewedAt
	l.mu.Unlock()

	for _, o := range l.deps.Observers {
		o.OnReviewComplete(note.ID, cycle, quality, result)
	}
	return nil
}

func (l *Loop) recordError(err error) {
	l.mu.Lock()
	l.stats.ErrorsToday++
	l.mu.Unlock()
	l.deps.Logger.Error("loop iteration error", slog.String("error", err.Error()))
}

func (l *Loop) inQuietHours(now time.Time) bool {
	return hourInWindow(now.Hour(), l.opts.QuietHoursStart, l.opts.QuietHoursEnd)
}

// hourInWindow reports whether h falls inside [start, end), wrapping
// midnight when start > end.
func hourInWindow(h, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
