package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/content"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "analyze <note-id>",
		Short: "Run a note through the analysis pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			note, err := app.Notes.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			nc := analysis.BuildContext(note)
			result := app.Pipeline.Analyze(ctx, nc)

			policy := app.Config.Worker.Options().Policy
			analysis.MarkAutoApply(result, policy)

			if apply {
				updated := note.Content
				for i := range result.Actions {
					if !result.Actions[i].Applied {
						continue
					}
					out, applyErr := content.ApplyAction(updated, result.Actions[i])
					if applyErr != nil {
						result.Actions[i].Applied = false
						continue
					}
					updated = out
				}
				if updated != note.Content {
					if err := app.Notes.UpdateContent(ctx, note.ID, updated, app.now()); err != nil {
						return err
					}
					note.Content = updated
					nc = analysis.BuildContext(note)
				}
			} else {
				// Dry run: report what would apply without writing.
				for i := range result.Actions {
					result.Actions[i].Applied = false
				}
			}

			score := analysis.QualityScore(nc, result)
			quality := analysis.MapToCycleQuality(score)

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAnalysis(result, score, quality))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Apply auto-approved actions to the note")

	return cmd
}
