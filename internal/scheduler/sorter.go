package scheduler

import (
	"sort"

	"github.com/lmercadier/revoir/internal/domain"
)

// CanonicalSort orders due candidates by the deterministic canonical rules:
// 1. Importance: critical > high > normal > low
// 2. Next due: earliest first (unset sorts first)
// 3. Note ID: lexical ascending
func CanonicalSort(candidates []domain.DueCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		ra, rb := domain.ImportanceRank(a.Importance), domain.ImportanceRank(b.Importance)
		if ra != rb {
			return ra < rb
		}

		// Unset next_due means "never reviewed" and jumps the queue.
		dueA, dueB := a.State.NextDue, b.State.NextDue
		if (dueA == nil) != (dueB == nil) {
			return dueA == nil
		}
		if dueA != nil && dueB != nil && !dueA.Equal(*dueB) {
			return dueA.Before(*dueB)
		}

		return a.State.NoteID < b.State.NoteID
	})
}
