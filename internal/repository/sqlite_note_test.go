package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/testutil"
)

func TestNoteCRUD(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteNoteRepo(database)
	ctx := context.Background()

	n := testutil.SeedNote(t, database, "n1", "Alpha", domain.TypePerson, domain.ImportanceHigh)

	loaded, err := repo.GetByID(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", loaded.Title)
	assert.Equal(t, domain.TypePerson, loaded.Type)
	assert.Equal(t, domain.ImportanceHigh, loaded.Importance)

	n.Importance = domain.ImportanceArchive
	n.UpdatedAt = n.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, n))

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "n1"))
	_, err = repo.GetByID(ctx, "n1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNoteUpdateContentBumpsModifiedTime(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteNoteRepo(database)
	ctx := context.Background()

	n := testutil.SeedNote(t, database, "n1", "Alpha", domain.TypeEntity, domain.ImportanceNormal)

	later := n.UpdatedAt.Add(2 * time.Hour)
	require.NoError(t, repo.UpdateContent(ctx, "n1", "# Alpha\n\nRewritten.\n", later))

	modified, err := repo.ListModifiedSince(ctx, n.UpdatedAt)
	require.NoError(t, err)
	require.Len(t, modified, 1)
	assert.Equal(t, "# Alpha\n\nRewritten.\n", modified[0].Content)
}

func TestNoteUpdateMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteNoteRepo(database)

	err := repo.UpdateContent(context.Background(), "ghost", "x", time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDigestRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteDigestRepo(database)
	ctx := context.Background()

	d := &domain.Digest{
		Date: "2026-03-01",
		Items: []domain.DigestItem{
			{NoteID: "n1", Title: "Alpha", Type: domain.TypeEntity, Importance: domain.ImportanceHigh, Cycle: domain.CycleLecture},
		},
		GeneratedAt: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, d))

	loaded, err := repo.Get(ctx, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Alpha", loaded.Items[0].Title)

	_, err = repo.Get(ctx, "2026-03-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
