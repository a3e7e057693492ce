// Package formatter renders engine output for the terminal.
package formatter

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/lmercadier/revoir/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// IsInteractive reports whether stdout is a terminal. Non-interactive
// output keeps lipgloss's automatic color stripping.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ImportanceStyle returns the style for an importance level.
func ImportanceStyle(i domain.Importance) lipgloss.Style {
	switch i {
	case domain.ImportanceCritical:
		return StyleRed
	case domain.ImportanceHigh:
		return StyleYellow
	case domain.ImportanceLow, domain.ImportanceArchive:
		return StyleDim
	default:
		return StyleFg
	}
}

// StateIndicator returns a colored worker-state indicator such as
// "● running".
func StateIndicator(state domain.WorkerState) string {
	switch state {
	case domain.WorkerRunning:
		return StyleGreen.Render("● running")
	case domain.WorkerPaused:
		return StyleYellow.Render("● paused")
	case domain.WorkerIdle:
		return StyleBlue.Render("● idle")
	case domain.WorkerStopped:
		return StyleDim.Render("● stopped")
	default:
		return StyleDim.Render("● unknown")
	}
}

// QualityStyle colors a 0-5 review rating.
func QualityStyle(q int) lipgloss.Style {
	switch {
	case q >= 4:
		return StyleGreen
	case q == 3:
		return StyleYellow
	default:
		return StyleRed
	}
}
