package formatter

import (
	"fmt"
	"strings"

	"github.com/lmercadier/revoir/internal/domain"
)

// FormatAnalysis renders an analysis result with its proposed actions.
func FormatAnalysis(result *domain.AnalysisResult, score, quality int) string {
	var b strings.Builder

	tier := StyleBlue.Render(result.TierUsed)
	if result.TierUsed == "rules" {
		tier = StylePurple.Render("rules fallback")
	}
	b.WriteString(fmt.Sprintf("%s  confidence %.2f", tier, result.Confidence))
	if result.Escalated {
		b.WriteString(StyleYellow.Render("  (escalated)"))
	}
	b.WriteString("\n")
	if result.Rationale != "" {
		b.WriteString(StyleDim.Render(result.Rationale) + "\n")
	}
	b.WriteString("\n")

	if len(result.Actions) == 0 {
		b.WriteString(StyleDim.Render("No actions proposed.") + "\n")
	} else {
		rows := make([][]string, 0, len(result.Actions))
		for _, a := range result.Actions {
			status := StyleYellow.Render("pending")
			if a.Applied {
				status = StyleGreen.Render("applied")
			}
			rows = append(rows, []string{
				string(a.Kind),
				a.Target,
				fmt.Sprintf("%.2f", a.Confidence),
				status,
				StyleDim.Render(truncate(a.Rationale, 60)),
			})
		}
		b.WriteString(RenderTable([]string{"Action", "Target", "Conf", "Status", "Rationale"}, rows))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Quality score %s/100  rating %s/5\n",
		StyleBold.Render(fmt.Sprintf("%d", score)),
		QualityStyle(quality).Render(fmt.Sprintf("%d", quality))))

	return b.String()
}

// FormatDigest renders the daily digest.
func FormatDigest(d *domain.Digest) string {
	if len(d.Items) == 0 {
		return StyleDim.Render("Digest for "+d.Date+" is empty.") + "\n"
	}

	rows := make([][]string, 0, len(d.Items))
	for _, item := range d.Items {
		rows = append(rows, []string{
			item.NoteID,
			StyleFg.Render(item.Title),
			string(item.Type),
			ImportanceStyle(item.Importance).Render(string(item.Importance)),
		})
	}
	return RenderBox("Digest "+d.Date,
		RenderTable([]string{"ID", "Title", "Type", "Importance"}, rows))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
