package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
)

func newNoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes directly",
	}
	cmd.AddCommand(
		newNoteAddCmd(app),
		newNoteListCmd(app),
		newNoteShowCmd(app),
	)
	return cmd
}

func newNoteAddCmd(app *App) *cobra.Command {
	var typeFlag string
	var importanceFlag string
	var content string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note and schedule it on both cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.ValidNoteTypes[typeFlag] {
				return fmt.Errorf("unknown note type %q", typeFlag)
			}
			switch domain.Importance(importanceFlag) {
			case domain.ImportanceCritical, domain.ImportanceHigh, domain.ImportanceNormal,
				domain.ImportanceLow, domain.ImportanceArchive:
			default:
				return fmt.Errorf("unknown importance %q", importanceFlag)
			}

			now := app.now()
			title := args[0]
			body := content
			if body == "" {
				body = "# " + title + "\n"
			}
			note := &domain.Note{
				ID:         uuid.NewString(),
				Title:      title,
				Type:       domain.NoteType(typeFlag),
				Importance: domain.Importance(importanceFlag),
				Content:    body,
				CreatedAt:  now,
				UpdatedAt:  now,
			}

			ctx := context.Background()
			if err := app.Notes.Create(ctx, note); err != nil {
				return err
			}
			for _, cycle := range domain.Cycles {
				if _, err := app.States.CreateDefault(ctx, note.ID, cycle, note.Type, now); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s note %s (%s).\n", note.Type, note.Title, note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "other", "Note type")
	cmd.Flags().StringVar(&importanceFlag, "importance", "normal", "Importance level")
	cmd.Flags().StringVar(&content, "content", "", "Initial markdown content")

	return cmd
}

func newNoteListCmd(app *App) *cobra.Command {
	var includeArchive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := app.Notes.List(context.Background(), includeArchive)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes.")
				return nil
			}

			rows := make([][]string, 0, len(notes))
			for _, n := range notes {
				rows = append(rows, []string{
					n.ID,
					n.Title,
					string(n.Type),
					formatter.ImportanceStyle(n.Importance).Render(string(n.Importance)),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(),
				formatter.RenderTable([]string{"ID", "Title", "Type", "Importance"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeArchive, "all", false, "Include archive-importance notes")

	return cmd
}

func newNoteShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show a note with its scheduling state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			note, err := app.Notes.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s  %s / %s\n\n", formatter.StyleBold.Render(note.Title),
				note.Type, note.Importance)

			now := app.now()
			for _, cycle := range domain.Cycles {
				state, err := app.States.Get(ctx, note.ID, cycle)
				if errors.Is(err, repository.ErrNotFound) {
					fmt.Fprintf(&b, "%s: unscheduled\n", cycle)
					continue
				}
				if err != nil {
					return err
				}
				due := "never"
				if state.NextDue != nil {
					due = formatter.RelativeTimeFrom(*state.NextDue, now)
				}
				fmt.Fprintf(&b, "%s: ef %.2f, rep %d, interval %.0fh, due %s, %d reviews\n",
					cycle, state.Easiness, state.Repetition, state.IntervalHours, due,
					state.CompletedCount)
			}

			b.WriteString("\n" + note.Content)
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}
