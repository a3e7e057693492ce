package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lmercadier/revoir/internal/domain"
)

func candidate(id string, imp domain.Importance, due *time.Time) domain.DueCandidate {
	return domain.DueCandidate{
		State:      domain.ReviewState{NoteID: id, Cycle: domain.CycleRetouche, NextDue: due},
		Title:      id,
		Type:       domain.TypeEntity,
		Importance: imp,
	}
}

func TestCanonicalSortImportanceFirst(t *testing.T) {
	early := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(4 * time.Hour)

	cands := []domain.DueCandidate{
		candidate("low-early", domain.ImportanceLow, &early),
		candidate("critical-late", domain.ImportanceCritical, &late),
		candidate("normal", domain.ImportanceNormal, &early),
		candidate("high", domain.ImportanceHigh, &late),
	}
	CanonicalSort(cands)

	got := []string{}
	for _, c := range cands {
		got = append(got, c.State.NoteID)
	}
	assert.Equal(t, []string{"critical-late", "high", "normal", "low-early"}, got)
}

func TestCanonicalSortUnsetDueSortsFirst(t *testing.T) {
	early := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	cands := []domain.DueCandidate{
		candidate("b-late", domain.ImportanceNormal, &late),
		candidate("a-early", domain.ImportanceNormal, &early),
		candidate("c-unset", domain.ImportanceNormal, nil),
	}
	CanonicalSort(cands)

	assert.Equal(t, "c-unset", cands[0].State.NoteID)
	assert.Equal(t, "a-early", cands[1].State.NoteID)
	assert.Equal(t, "b-late", cands[2].State.NoteID)
}

func TestCanonicalSortTiesBreakOnNoteID(t *testing.T) {
	due := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cands := []domain.DueCandidate{
		candidate("n2", domain.ImportanceNormal, &due),
		candidate("n1", domain.ImportanceNormal, &due),
	}
	CanonicalSort(cands)
	assert.Equal(t, "n1", cands[0].State.NoteID)
}
