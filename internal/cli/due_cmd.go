package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/domain"
)

// parseCycle maps a --cycle flag value to a cycle kind.
func parseCycle(s string) (domain.CycleKind, error) {
	switch s {
	case "retouche":
		return domain.CycleRetouche, nil
	case "lecture":
		return domain.CycleLecture, nil
	default:
		return "", fmt.Errorf("unknown cycle %q (want retouche or lecture)", s)
	}
}

func newDueCmd(app *App) *cobra.Command {
	var cycleFlag string
	var typeFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List notes due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := parseCycle(cycleFlag)
			if err != nil {
				return err
			}

			var typeFilter *domain.NoteType
			if typeFlag != "" {
				if !domain.ValidNoteTypes[typeFlag] {
					return fmt.Errorf("unknown note type %q", typeFlag)
				}
				t := domain.NoteType(typeFlag)
				typeFilter = &t
			}

			now := app.now()
			due, err := app.Sched.GetDue(context.Background(), limit, cycle, typeFilter, now)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDueList(cycle, due, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&cycleFlag, "cycle", "lecture", "Cycle to query (retouche or lecture)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Restrict to one note type")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum notes to list")

	return cmd
}

func newWorkloadCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Forecast review load per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			forecast, err := app.Sched.EstimateWorkload(context.Background(), days, app.now())
			if err != nil {
				return err
			}

			dates := make([]string, len(forecast))
			retouche := make([]int, len(forecast))
			lecture := make([]int, len(forecast))
			for i, d := range forecast {
				dates[i] = d.Date
				retouche[i] = d.Retouche
				lecture[i] = d.Lecture
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkload(dates, retouche, lecture))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Forecast horizon in days")

	return cmd
}
