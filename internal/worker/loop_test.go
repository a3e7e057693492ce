package worker

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
	"github.com/lmercadier/revoir/internal/testutil"
)

// fakeClock is a settable clock whose sleep advances time instead of
// blocking.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type loopFixture struct {
	loop    *Loop
	clock   *fakeClock
	db      *sql.DB
	notes   *repository.SQLiteNoteRepo
	states  *repository.SQLiteReviewStateRepo
	digests *repository.SQLiteDigestRepo
}

// newFixture builds a loop over an in-memory store with a rules-only
// pipeline (no model backend).
func newFixture(t *testing.T, opts Options) *loopFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	notes := repository.NewSQLiteNoteRepo(database)
	states := repository.NewSQLiteReviewStateRepo(database)
	digests := repository.NewSQLiteDigestRepo(database)
	sched := scheduler.NewService(states, notes)

	// Noon, well outside the default 23-7 quiet window.
	clock := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}

	loop := New(opts, Deps{
		Sched:    sched,
		Pipeline: analysis.NewPipeline(nil, nil),
		Notes:    notes,
		States:   states,
		Digests:  digests,
	}, clock.Now, clock.Sleep)

	return &loopFixture{
		loop:    loop,
		clock:   clock,
		db:      database,
		notes:   notes,
		states:  states,
		digests: digests,
	}
}

// seedDue creates a note with a review state due immediately on the
// given cycle.
func (f *loopFixture) seedDue(t *testing.T, id string, cycle domain.CycleKind) {
	t.Helper()
	testutil.SeedNote(t, f.db, id, "Note "+id, domain.TypeEntity, domain.ImportanceNormal)
	_, err := f.states.CreateDefault(context.Background(), id, cycle, domain.TypeEntity, f.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
}

func TestHourInWindow(t *testing.T) {
	// Wrap-around window 23-7.
	assert.True(t, hourInWindow(23, 23, 7))
	assert.True(t, hourInWindow(2, 23, 7))
	assert.True(t, hourInWindow(6, 23, 7))
	assert.False(t, hourInWindow(7, 23, 7))
	assert.False(t, hourInWindow(12, 23, 7))

	// Plain window 9-17.
	assert.True(t, hourInWindow(9, 9, 17))
	assert.False(t, hourInWindow(17, 9, 17))
	assert.False(t, hourInWindow(8, 9, 17))

	// Empty window.
	assert.False(t, hourInWindow(5, 5, 5))
}

func TestDailyCounterReset(t *testing.T) {
	f := newFixture(t, Options{})
	f.loop.stats = Stats{
		ReviewsToday:   10,
		RetouchesToday: 5,
		ErrorsToday:    2,
		ReviewsTotal:   100,
		LastResetDate:  "2026-03-01",
	}

	f.loop.resetDailyIfNeeded(time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC))

	assert.Zero(t, f.loop.stats.ReviewsToday)
	assert.Zero(t, f.loop.stats.RetouchesToday)
	assert.Zero(t, f.loop.stats.ErrorsToday)
	assert.Equal(t, 100, f.loop.stats.ReviewsTotal, "lifetime counters survive the reset")
	assert.Equal(t, "2026-03-02", f.loop.stats.LastResetDate)
}

func TestDailyCounterResetSameDayNoop(t *testing.T) {
	f := newFixture(t, Options{})
	f.loop.stats = Stats{ReviewsToday: 10, LastResetDate: "2026-03-02"}

	f.loop.resetDailyIfNeeded(time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, 10, f.loop.stats.ReviewsToday)
}

func TestPauseDecisionBudgetExhausted(t *testing.T) {
	f := newFixture(t, Options{MaxDailyReviews: 3})
	f.loop.stats.ReviewsToday = 3

	paused, reason := f.loop.pauseDecision(f.clock.Now())

	assert.True(t, paused)
	assert.Contains(t, reason, "budget")
}

func TestPausePredicateExtensionPoint(t *testing.T) {
	f := newFixture(t, Options{})
	f.loop.deps.PausePredicates = []PausePredicate{
		func(Snapshot) (bool, string) { return true, "cpu pressure" },
	}

	paused, reason := f.loop.pauseDecision(f.clock.Now())

	assert.True(t, paused)
	assert.Equal(t, "cpu pressure", reason)
}

func TestRetoucheSkippedDuringQuietHours(t *testing.T) {
	f := newFixture(t, Options{})
	f.seedDue(t, "n1", domain.CycleRetouche)
	f.clock.Set(time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC))

	worked := f.loop.runRetoucheBatch(context.Background())

	assert.False(t, worked)
	assert.Zero(t, f.loop.stats.RetouchesToday)
}

func TestRetoucheBatchProcessesAndRecords(t *testing.T) {
	f := newFixture(t, Options{})
	f.seedDue(t, "n1", domain.CycleRetouche)

	worked := f.loop.runRetoucheBatch(context.Background())

	assert.True(t, worked)
	assert.Equal(t, 1, f.loop.stats.RetouchesToday)
	assert.Equal(t, 1, f.loop.stats.ReviewsToday)

	state, err := f.states.Get(context.Background(), "n1", domain.CycleRetouche)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CompletedCount)
	require.NotNil(t, state.NextDue)
	assert.True(t, state.NextDue.After(f.clock.Now()))
}

func TestRetoucheBatchHonorsDailyBudget(t *testing.T) {
	f := newFixture(t, Options{MaxDailyRetouches: 2, RetoucheBatchSize: 10})
	for _, id := range []string{"n1", "n2", "n3", "n4"} {
		f.seedDue(t, id, domain.CycleRetouche)
	}

	f.loop.runRetoucheBatch(context.Background())

	assert.Equal(t, 2, f.loop.stats.RetouchesToday)
}

func TestLectureBatchTimeBox(t *testing.T) {
	// Each inter-item sleep advances the fake clock past the session
	// budget, so only the first note gets processed.
	f := newFixture(t, Options{MaxSessionMinutes: 5, SleepBetweenReviews: 6 * time.Minute})
	for _, id := range []string{"n1", "n2", "n3"} {
		f.seedDue(t, id, domain.CycleLecture)
	}

	worked := f.loop.runLectureBatch(context.Background())

	assert.True(t, worked)
	assert.Equal(t, 1, f.loop.stats.ReviewsToday)
}

func TestLectureBatchHonorsReviewBudget(t *testing.T) {
	f := newFixture(t, Options{MaxDailyReviews: 2})
	for _, id := range []string{"n1", "n2", "n3"} {
		f.seedDue(t, id, domain.CycleLecture)
	}

	f.loop.runLectureBatch(context.Background())

	assert.Equal(t, 2, f.loop.stats.ReviewsToday)

	paused, _ := f.loop.pauseDecision(f.clock.Now())
	assert.True(t, paused)
}

func TestDigestGeneratedOncePerDay(t *testing.T) {
	f := newFixture(t, Options{DigestHour: 12, DigestMaxItems: 5})
	f.seedDue(t, "n1", domain.CycleLecture)
	f.seedDue(t, "n2", domain.CycleLecture)

	f.loop.maybeGenerateDigest(context.Background(), f.clock.Now())
	f.loop.maybeGenerateDigest(context.Background(), f.clock.Now())

	digest, err := f.digests.Get(context.Background(), "2026-03-02")
	require.NoError(t, err)
	assert.Len(t, digest.Items, 2)
	assert.Equal(t, "2026-03-02", f.loop.lastDigestDate)
}

func TestDigestSkippedOutsideDigestHour(t *testing.T) {
	f := newFixture(t, Options{DigestHour: 6})
	f.seedDue(t, "n1", domain.CycleLecture)

	f.loop.maybeGenerateDigest(context.Background(), f.clock.Now()) // noon

	_, err := f.digests.Get(context.Background(), "2026-03-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRunStopsCooperatively(t *testing.T) {
	f := newFixture(t, Options{})
	f.loop.Stop()

	err := f.loop.Run(context.Background())

	require.NoError(t, err)
	snap := f.loop.Status(f.clock.Now())
	assert.Equal(t, domain.WorkerStopped, snap.State)
}

func TestPauseResumeStateMachine(t *testing.T) {
	f := newFixture(t, Options{})
	f.loop.Pause()

	f.loop.iterate(context.Background())
	snap := f.loop.Status(f.clock.Now())
	assert.Equal(t, domain.WorkerPaused, snap.State)
	assert.Equal(t, "pause requested", snap.PauseReason)

	f.loop.Resume()
	f.loop.iterate(context.Background())
	snap = f.loop.Status(f.clock.Now())
	assert.NotEqual(t, domain.WorkerPaused, snap.State)
	assert.Empty(t, snap.PauseReason)
}

func TestIterateGoesIdleWithNoWork(t *testing.T) {
	f := newFixture(t, Options{})
	before := f.clock.Now()

	f.loop.iterate(context.Background())

	snap := f.loop.Status(f.clock.Now())
	assert.Equal(t, domain.WorkerIdle, snap.State)
	// Idle sleep is bounded by the ingestion interval for change
	// detection responsiveness.
	assert.Equal(t, time.Minute, f.clock.Now().Sub(before))
}

func TestSnapshotDerivedBooleans(t *testing.T) {
	f := newFixture(t, Options{DigestHour: 6})

	snap := f.loop.Status(time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC))
	assert.True(t, snap.IsQuietHours)
	assert.False(t, snap.IsDigestHour)

	snap = f.loop.Status(time.Date(2026, 3, 2, 6, 10, 0, 0, time.UTC))
	assert.True(t, snap.IsQuietHours, "6am is inside the 23-7 window")
	assert.True(t, snap.IsDigestHour)
}
