package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeTimeFrom returns a human-friendly relative time string from a
// reference time ("Just now", "In 3h", "2d ago", ...).
func RelativeTimeFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	hours := diff.Hours()

	switch {
	case math.Abs(hours) < 1:
		mins := int(diff.Minutes())
		switch {
		case mins >= 1:
			return fmt.Sprintf("In %dm", mins)
		case mins <= -1:
			return fmt.Sprintf("%dm ago", -mins)
		default:
			return "Just now"
		}
	case hours >= 1 && hours < 48:
		return fmt.Sprintf("In %dh", int(math.Round(hours)))
	case hours >= 48:
		return fmt.Sprintf("In %dd", int(math.Round(hours/24)))
	case hours > -48:
		return fmt.Sprintf("%dh ago", int(math.Round(-hours)))
	default:
		return fmt.Sprintf("%dd ago", int(math.Round(-hours/24)))
	}
}

// RenderTable renders a simple aligned table with a header separator
// line. Column widths use visible width so styled cells align.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(StyleHeader.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(h)+colGap))
		}
	}
	b.WriteString("\n")

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			b.WriteString(row[i])
			if i < cols-1 {
				pad := widths[i] - lipgloss.Width(row[i])
				if pad < 0 {
					pad = 0
				}
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
