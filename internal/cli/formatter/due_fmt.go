package formatter

import (
	"fmt"
	"math"
	"time"

	"github.com/lmercadier/revoir/internal/domain"
)

// FormatDueList renders due review candidates as a table.
func FormatDueList(cycle domain.CycleKind, due []domain.DueCandidate, now time.Time) string {
	if len(due) == 0 {
		return StyleDim.Render(fmt.Sprintf("Nothing due on the %s cycle.", cycle)) + "\n"
	}

	rows := make([][]string, 0, len(due))
	for _, cand := range due {
		dueCol := StyleDim.Render("never reviewed")
		if cand.State.NextDue != nil {
			dueCol = dueLabel(*cand.State.NextDue, now)
		}
		rows = append(rows, []string{
			cand.State.NoteID,
			StyleFg.Render(cand.Title),
			string(cand.Type),
			ImportanceStyle(cand.Importance).Render(string(cand.Importance)),
			dueCol,
			fmt.Sprintf("%d", cand.State.CompletedCount),
		})
	}

	header := StyleHeader.Render(fmt.Sprintf("Due on %s cycle (%d)", cycle, len(due)))
	return header + "\n\n" + RenderTable(
		[]string{"ID", "Title", "Type", "Importance", "Due", "Reviews"},
		rows,
	)
}

// dueLabel renders a due timestamp for the due list. Entries past due
// by an hour or more get an explicit overdue marker.
func dueLabel(due, now time.Time) string {
	overdue := now.Sub(due)
	switch {
	case overdue < time.Hour:
		return StyleYellow.Render("Due now")
	case overdue < 48*time.Hour:
		return StyleRed.Render(fmt.Sprintf("Overdue %dh", int(math.Round(overdue.Hours()))))
	default:
		return StyleRed.Render(fmt.Sprintf("Overdue %dd", int(math.Round(overdue.Hours()/24))))
	}
}

// FormatWorkload renders the per-day review forecast.
func FormatWorkload(days []string, retouche, lecture []int) string {
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		total := retouche[i] + lecture[i]
		totalCol := StyleDim.Render("0")
		if total > 0 {
			totalCol = StyleBold.Render(fmt.Sprintf("%d", total))
		}
		rows = append(rows, []string{
			d,
			fmt.Sprintf("%d", retouche[i]),
			fmt.Sprintf("%d", lecture[i]),
			totalCol,
		})
	}
	return RenderTable([]string{"Date", "Retouche", "Lecture", "Total"}, rows)
}
