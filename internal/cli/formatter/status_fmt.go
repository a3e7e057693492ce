package formatter

import (
	"fmt"
	"strings"

	"github.com/lmercadier/revoir/internal/worker"
)

// FormatStatus renders a worker snapshot for the status command and
// the live watch view.
func FormatStatus(snap worker.Snapshot) string {
	var b strings.Builder

	b.WriteString(StateIndicator(snap.State))
	if snap.PauseReason != "" {
		b.WriteString(StyleDim.Render("  (" + snap.PauseReason + ")"))
	}
	b.WriteString("\n\n")

	rows := [][]string{
		{"Reviews today", fmt.Sprintf("%d", snap.Stats.ReviewsToday), fmt.Sprintf("%d lifetime", snap.Stats.ReviewsTotal)},
		{"Retouches today", fmt.Sprintf("%d", snap.Stats.RetouchesToday), fmt.Sprintf("%d lifetime", snap.Stats.RetouchesTotal)},
		{"Errors today", formatErrors(snap.Stats.ErrorsToday), ""},
		{"Actions applied", fmt.Sprintf("%d", snap.Stats.ActionsApplied), fmt.Sprintf("%d pending", snap.Stats.ActionsPending)},
	}
	b.WriteString(RenderTable([]string{"Counter", "Today", "Detail"}, rows))
	b.WriteString("\n")

	if snap.Stats.LastReviewAt != nil {
		b.WriteString(StyleDim.Render("Last review "+RelativeTimeFrom(*snap.Stats.LastReviewAt, snap.Now)) + "\n")
	}
	if snap.IsQuietHours {
		b.WriteString(StyleYellow.Render("Quiet hours: retouche passes suppressed") + "\n")
	}
	if snap.IsDigestHour {
		b.WriteString(StyleBlue.Render("Digest hour") + "\n")
	}

	return b.String()
}

func formatErrors(n int) string {
	if n == 0 {
		return StyleGreen.Render("0")
	}
	return StyleRed.Render(fmt.Sprintf("%d", n))
}
