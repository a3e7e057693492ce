package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/domain"
)

func revoirHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// ratingForm collects a 0-5 recall rating.
func ratingForm(title string, rating *int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Description("How well did you recall this note?").
				Options(
					huh.NewOption("5 — perfect recall", 5),
					huh.NewOption("4 — correct after hesitation", 4),
					huh.NewOption("3 — correct with effort", 3),
					huh.NewOption("2 — incorrect, felt familiar", 2),
					huh.NewOption("1 — incorrect, vaguely familiar", 1),
					huh.NewOption("0 — complete blackout", 0),
				).
				Value(rating),
		),
	).WithTheme(revoirHuhTheme()).WithShowHelp(false)
}

func newReviewCmd(app *App) *cobra.Command {
	var qualityFlag string

	cmd := &cobra.Command{
		Use:   "review <note-id>",
		Short: "Record a human (lecture) review of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			note, err := app.Notes.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			var quality int
			if qualityFlag != "" {
				quality, err = strconv.Atoi(qualityFlag)
				if err != nil {
					return fmt.Errorf("invalid --quality %q", qualityFlag)
				}
			} else {
				if app.IsInteractive != nil && !app.IsInteractive() {
					return fmt.Errorf("no terminal; pass --quality 0..5")
				}
				if err := ratingForm(note.Title, &quality).Run(); err != nil {
					return err
				}
			}

			now := app.now()
			state, err := app.Sched.RecordReview(ctx, note.ID, domain.CycleLecture, quality, now)
			if err != nil {
				return err
			}

			next := "never"
			if state.NextDue != nil {
				next = formatter.RelativeTimeFrom(*state.NextDue, now)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s; ef %.2f, next due %s.\n",
				formatter.QualityStyle(quality).Render(fmt.Sprintf("%d/5", quality)),
				note.Title, state.Easiness, next)
			return nil
		},
	}

	cmd.Flags().StringVar(&qualityFlag, "quality", "", "Rating 0-5 (skips the interactive form)")

	return cmd
}
