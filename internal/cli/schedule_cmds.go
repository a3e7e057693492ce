package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
)

func newTriggerCmd(app *App) *cobra.Command {
	var cycleFlag string

	cmd := &cobra.Command{
		Use:   "trigger <note-id>",
		Short: "Mark a note due now, bypassing its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := parseCycle(cycleFlag)
			if err != nil {
				return err
			}

			state, err := app.Sched.TriggerImmediate(context.Background(), args[0], cycle, app.now())
			if err != nil {
				return err
			}

			if state.NextDue == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is a skip-revision note; it stays unscheduled.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now due on the %s cycle.\n", args[0], cycle)
			return nil
		},
	}

	cmd.Flags().StringVar(&cycleFlag, "cycle", "retouche", "Cycle to trigger (retouche or lecture)")

	return cmd
}

func newPostponeCmd(app *App) *cobra.Command {
	var cycleFlag string
	var hours float64

	cmd := &cobra.Command{
		Use:   "postpone <note-id>",
		Short: "Push a note's next review further out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := parseCycle(cycleFlag)
			if err != nil {
				return err
			}
			if hours <= 0 {
				return fmt.Errorf("--hours must be positive")
			}

			now := app.now()
			state, err := app.Sched.Postpone(context.Background(), args[0], cycle, hours, now)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s postponed; next due %s.\n",
				args[0], formatter.RelativeTimeFrom(*state.NextDue, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&cycleFlag, "cycle", "lecture", "Cycle to postpone (retouche or lecture)")
	cmd.Flags().Float64Var(&hours, "hours", 24, "How many hours to postpone by")

	return cmd
}

func newDigestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "digest [date]",
		Short: "Show a daily digest (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := app.now().UTC().Format("2006-01-02")
			if len(args) == 1 {
				date = args[0]
			}

			digest, err := app.Digests.Get(context.Background(), date)
			if err != nil {
				return fmt.Errorf("no digest for %s: %w", date, err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDigest(digest))
			return nil
		},
	}
}
