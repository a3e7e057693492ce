package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/config"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
	"github.com/lmercadier/revoir/internal/testutil"
)

var cmdTestNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// testApp wires a full App backed by an in-memory DB. The pipeline has
// no backend, so analysis always takes the rules path.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)

	noteRepo := repository.NewSQLiteNoteRepo(database)
	stateRepo := repository.NewSQLiteReviewStateRepo(database)
	digestRepo := repository.NewSQLiteDigestRepo(database)

	return &App{
		Config:        config.Default(),
		Notes:         noteRepo,
		States:        stateRepo,
		Digests:       digestRepo,
		Sched:         scheduler.NewService(stateRepo, noteRepo),
		Pipeline:      analysis.NewPipeline(nil, nil),
		Clock:         func() time.Time { return cmdTestNow },
		IsInteractive: func() bool { return false },
	}
}

// seedScheduledNote creates a note with default states on both cycles,
// due immediately.
func seedScheduledNote(t *testing.T, app *App, id, title string, noteType domain.NoteType) {
	t.Helper()
	ctx := context.Background()

	note := &domain.Note{
		ID:         id,
		Title:      title,
		Type:       noteType,
		Importance: domain.ImportanceNormal,
		Content:    "# " + title + "\n\nSome content.\n",
		CreatedAt:  cmdTestNow,
		UpdatedAt:  cmdTestNow,
	}
	require.NoError(t, app.Notes.Create(ctx, note))
	for _, cycle := range domain.Cycles {
		_, err := app.States.CreateDefault(ctx, id, cycle, noteType, cmdTestNow)
		require.NoError(t, err)
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- note commands ---

func TestNoteAdd_CreatesAndSchedules(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "note", "add", "Docker Basics", "--type", "process")
	require.NoError(t, err)
	assert.Contains(t, out, "Created process note Docker Basics")

	notes, err := app.Notes.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	for _, cycle := range domain.Cycles {
		_, err := app.States.Get(context.Background(), notes[0].ID, cycle)
		assert.NoError(t, err)
	}
}

func TestNoteAdd_RejectsUnknownType(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "note", "add", "Bad", "--type", "recipe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown note type")
}

func TestNoteList_Empty(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "note", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No notes.")
}

func TestNoteShow_IncludesScheduleState(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "note", "show", "people/ada.md")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "retouche")
	assert.Contains(t, out, "lecture")
}

// --- due / workload ---

func TestDueCmd_ListsDueNotes(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "due", "--cycle", "retouche")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
}

func TestDueCmd_RejectsUnknownCycle(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "due", "--cycle", "weekly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cycle")
}

func TestDueCmd_TypeFilter(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)
	seedScheduledNote(t, app, "projects/revoir.md", "Revoir", domain.TypeProject)

	out, err := executeCmd(t, app, "due", "--cycle", "lecture", "--type", "project")
	require.NoError(t, err)
	assert.Contains(t, out, "Revoir")
	assert.NotContains(t, out, "Ada Lovelace")
}

func TestWorkloadCmd(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "workload", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Retouche")
}

// --- trigger / postpone ---

func TestTriggerCmd_MakesNoteDue(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	// Push the note out first so trigger has something to undo.
	_, err := executeCmd(t, app, "postpone", "people/ada.md", "--hours", "48")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "trigger", "people/ada.md", "--cycle", "lecture")
	require.NoError(t, err)
	assert.Contains(t, out, "now due")

	state, err := app.States.Get(context.Background(), "people/ada.md", domain.CycleLecture)
	require.NoError(t, err)
	require.NotNil(t, state.NextDue)
	assert.False(t, state.NextDue.After(cmdTestNow))
}

func TestTriggerCmd_SkipRevisionStaysUnscheduled(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "memories/trip.md", "Trip", domain.TypeMemory)

	out, err := executeCmd(t, app, "trigger", "memories/trip.md")
	require.NoError(t, err)
	assert.Contains(t, out, "skip-revision")
}

func TestPostponeCmd_RejectsNonPositiveHours(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	_, err := executeCmd(t, app, "postpone", "people/ada.md", "--hours", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

// --- review ---

func TestReviewCmd_WithQualityFlag(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "review", "people/ada.md", "--quality", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded")

	state, err := app.States.Get(context.Background(), "people/ada.md", domain.CycleLecture)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CompletedCount)
	require.NotNil(t, state.LastQuality)
	assert.Equal(t, 4, *state.LastQuality)
}

func TestReviewCmd_NonInteractiveNeedsQuality(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	_, err := executeCmd(t, app, "review", "people/ada.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--quality")
}

// --- analyze ---

func TestAnalyzeCmd_DryRunReportsPendingActions(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "analyze", "people/ada.md")
	require.NoError(t, err)
	assert.Contains(t, out, "rules")
	assert.Contains(t, out, "Quality score")
	assert.NotContains(t, out, "applied")

	// Dry run must not write.
	note, err := app.Notes.GetByID(context.Background(), "people/ada.md")
	require.NoError(t, err)
	assert.Contains(t, note.Content, "Some content.")
}

// --- digest ---

func TestDigestCmd_MissingDate(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "digest", "2026-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no digest for 2026-03-01")
}

func TestDigestCmd_ShowsSavedDigest(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Digests.Save(context.Background(), &domain.Digest{
		Date: "2026-03-02",
		Items: []domain.DigestItem{
			{NoteID: "people/ada.md", Title: "Ada Lovelace", Type: domain.TypePerson, Importance: domain.ImportanceHigh, Cycle: domain.CycleLecture},
		},
		GeneratedAt: cmdTestNow,
	}))

	out, err := executeCmd(t, app, "digest")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
}

// --- status ---

func TestStatusCmd_ReportsQueues(t *testing.T) {
	app := testApp(t)
	seedScheduledNote(t, app, "people/ada.md", "Ada Lovelace", domain.TypePerson)

	out, err := executeCmd(t, app, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "retouche")
	assert.Contains(t, out, "lecture")
	assert.Contains(t, out, "No digest yet")
}

// --- import ---

func TestImportCmd_WalksVault(t *testing.T) {
	app := testApp(t)

	vault := t.TempDir()
	peopleDir := filepath.Join(vault, "people")
	require.NoError(t, os.MkdirAll(peopleDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(peopleDir, "ada.md"),
		[]byte("---\ntitle: Ada Lovelace\n---\n\n# Ada Lovelace\n"),
		0o644,
	))

	out, err := executeCmd(t, app, "import", "--vault", vault)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 notes")

	note, err := app.Notes.GetByID(context.Background(), "people/ada.md")
	require.NoError(t, err)
	assert.Equal(t, domain.TypePerson, note.Type)
}

func TestImportCmd_NoVaultConfigured(t *testing.T) {
	app := testApp(t)
	app.Config.Vault.Path = ""

	_, err := executeCmd(t, app, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vault path")
}
