package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
	"github.com/lmercadier/revoir/internal/testutil"
)

func TestRecordReviewProgression(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "n1", "Alpha", domain.TypeEntity, domain.ImportanceNormal)
	_, err := states.CreateDefault(ctx, "n1", domain.CycleLecture, domain.TypeEntity, now)
	require.NoError(t, err)

	s, err := svc.RecordReview(ctx, "n1", domain.CycleLecture, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Repetition)
	assert.Equal(t, 24.0, s.IntervalHours, "entity base interval")
	assert.Equal(t, 1, s.CompletedCount)
	require.NotNil(t, s.LastQuality)
	assert.Equal(t, 5, *s.LastQuality)
	require.NotNil(t, s.NextDue)
	assert.True(t, s.NextDue.Equal(now.Add(24*time.Hour)))

	// Second pass lands on the fixed 12h constant regardless of type.
	s, err = svc.RecordReview(ctx, "n1", domain.CycleLecture, 5, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Repetition)
	assert.Equal(t, 12.0, s.IntervalHours)
}

func TestRecordReviewUnknownState(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := scheduler.NewService(
		repository.NewSQLiteReviewStateRepo(database),
		repository.NewSQLiteNoteRepo(database),
	)

	_, err := svc.RecordReview(context.Background(), "ghost", domain.CycleLecture, 4, time.Now().UTC())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordReviewInvalidQuality(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "n1", "Alpha", domain.TypeEntity, domain.ImportanceNormal)
	_, err := states.CreateDefault(ctx, "n1", domain.CycleLecture, domain.TypeEntity, now)
	require.NoError(t, err)

	_, err = svc.RecordReview(ctx, "n1", domain.CycleLecture, 7, now)
	assert.ErrorIs(t, err, scheduler.ErrInvalidQuality)
}

func TestRecordReviewSkipRevisionNeverDue(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "m1", "Journal", domain.TypeMemory, domain.ImportanceNormal)
	_, err := states.CreateDefault(ctx, "m1", domain.CycleLecture, domain.TypeMemory, now)
	require.NoError(t, err)

	for q := 0; q <= 5; q++ {
		s, err := svc.RecordReview(ctx, "m1", domain.CycleLecture, q, now)
		require.NoError(t, err)
		assert.Nil(t, s.NextDue, "quality %d must not schedule a skip-revision type", q)
	}
}

func TestGetDueOrderingAndLimit(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "a", "Normal early", domain.TypeEntity, domain.ImportanceNormal)
	testutil.SeedNote(t, database, "b", "Critical", domain.TypeEvent, domain.ImportanceCritical)
	testutil.SeedNote(t, database, "c", "Journal", domain.TypeMemory, domain.ImportanceCritical)
	testutil.SeedNote(t, database, "d", "Normal late", domain.TypeEntity, domain.ImportanceNormal)

	early := now.Add(-3 * time.Hour)
	late := now.Add(-time.Hour)
	for id, due := range map[string]*time.Time{"a": &early, "b": &late, "d": &late} {
		s := domain.NewReviewState(id, domain.CycleRetouche, domain.TypeEntity, now.Add(-24*time.Hour))
		s.NextDue = due
		require.NoError(t, states.Save(ctx, s))
	}
	// Journal note is due on paper but must be filtered out by type.
	sj := domain.NewReviewState("c", domain.CycleRetouche, domain.TypeEntity, now.Add(-24*time.Hour))
	sj.NextDue = &early
	require.NoError(t, states.Save(ctx, sj))

	due, err := svc.GetDue(ctx, 10, domain.CycleRetouche, nil, now)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "b", due[0].State.NoteID, "critical importance first")
	assert.Equal(t, "a", due[1].State.NoteID, "then earliest due")
	assert.Equal(t, "d", due[2].State.NoteID)

	limited, err := svc.GetDue(ctx, 2, domain.CycleRetouche, nil, now)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	entity := domain.TypeEntity
	typed, err := svc.GetDue(ctx, 10, domain.CycleRetouche, &entity, now)
	require.NoError(t, err)
	require.Len(t, typed, 2)
}

func TestTriggerImmediate(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "n1", "Alpha", domain.TypeEntity, domain.ImportanceNormal)

	// No state yet: one is created with type defaults.
	s, err := svc.TriggerImmediate(ctx, "n1", domain.CycleRetouche, now)
	require.NoError(t, err)
	require.NotNil(t, s.NextDue)
	assert.True(t, s.NextDue.Equal(now))

	// Push the due date out, then trigger again.
	future := now.Add(72 * time.Hour)
	s.NextDue = &future
	require.NoError(t, states.Save(ctx, s))

	s, err = svc.TriggerImmediate(ctx, "n1", domain.CycleRetouche, now)
	require.NoError(t, err)
	assert.True(t, s.NextDue.Equal(now), "trigger bypasses normal progression")
}

func TestTriggerImmediateSkipRevisionIsNoop(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "m1", "Journal", domain.TypeMemory, domain.ImportanceNormal)
	_, err := states.CreateDefault(ctx, "m1", domain.CycleRetouche, domain.TypeMemory, now)
	require.NoError(t, err)

	s, err := svc.TriggerImmediate(ctx, "m1", domain.CycleRetouche, now)
	require.NoError(t, err)
	assert.Nil(t, s.NextDue)
}

func TestPostpone(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "n1", "Alpha", domain.TypeEntity, domain.ImportanceNormal)

	// Overdue state: postpone counts from now.
	past := now.Add(-10 * time.Hour)
	s := domain.NewReviewState("n1", domain.CycleLecture, domain.TypeEntity, past)
	s.NextDue = &past
	require.NoError(t, states.Save(ctx, s))

	got, err := svc.Postpone(ctx, "n1", domain.CycleLecture, 6, now)
	require.NoError(t, err)
	assert.True(t, got.NextDue.Equal(now.Add(6*time.Hour)))

	// Future state: postpone counts from the current due time.
	got, err = svc.Postpone(ctx, "n1", domain.CycleLecture, 6, now)
	require.NoError(t, err)
	assert.True(t, got.NextDue.Equal(now.Add(12*time.Hour)))
}

func TestEstimateWorkload(t *testing.T) {
	database := testutil.NewTestDB(t)
	states := repository.NewSQLiteReviewStateRepo(database)
	notes := repository.NewSQLiteNoteRepo(database)
	svc := scheduler.NewService(states, notes)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedNote(t, database, "n1", "Overdue", domain.TypeEntity, domain.ImportanceNormal)
	testutil.SeedNote(t, database, "n2", "Tomorrow R", domain.TypeEntity, domain.ImportanceNormal)
	testutil.SeedNote(t, database, "n3", "Tomorrow L", domain.TypeEntity, domain.ImportanceNormal)
	testutil.SeedNote(t, database, "n4", "Far future", domain.TypeEntity, domain.ImportanceNormal)

	overdue := now.Add(-30 * time.Hour)
	tomorrow := now.Add(26 * time.Hour)
	far := now.AddDate(0, 0, 30)

	type row struct {
		id    string
		cycle domain.CycleKind
		due   time.Time
	}
	for _, r := range []row{
		{"n1", domain.CycleRetouche, overdue},
		{"n2", domain.CycleRetouche, tomorrow},
		{"n3", domain.CycleLecture, tomorrow},
		{"n4", domain.CycleRetouche, far},
	} {
		s := domain.NewReviewState(r.id, r.cycle, domain.TypeEntity, now.AddDate(0, 0, -2))
		due := r.due
		s.NextDue = &due
		require.NoError(t, states.Save(ctx, s))
	}

	load, err := svc.EstimateWorkload(ctx, 7, now)
	require.NoError(t, err)
	require.Len(t, load, 7)

	assert.Equal(t, "2026-03-01", load[0].Date)
	assert.Equal(t, 1, load[0].Retouche, "overdue counts into the first day")
	assert.Equal(t, 1, load[1].Retouche)
	assert.Equal(t, 1, load[1].Lecture)
	assert.Equal(t, 2, load[1].Total())
	for i := 2; i < 7; i++ {
		assert.Zero(t, load[i].Total(), "day %d", i)
	}
}
