package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue depths and today's digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := app.now()
			opts := app.Config.Worker.Options()

			var b strings.Builder

			rows := make([][]string, 0, len(domain.Cycles))
			for _, cycle := range domain.Cycles {
				due, err := app.Sched.GetDue(ctx, 0, cycle, nil, now)
				if err != nil {
					return err
				}
				rows = append(rows, []string{string(cycle), fmt.Sprintf("%d", len(due))})
			}
			b.WriteString(formatter.RenderTable([]string{"Cycle", "Due now"}, rows))
			b.WriteString("\n")

			if hourInWindow(now.Hour(), opts.QuietHoursStart, opts.QuietHoursEnd) {
				b.WriteString(formatter.StyleYellow.Render("Quiet hours: retouche passes suppressed") + "\n")
			}
			if now.Hour() == opts.DigestHour {
				b.WriteString(formatter.StyleBlue.Render("Digest hour") + "\n")
			}

			today := now.UTC().Format("2006-01-02")
			digest, err := app.Digests.Get(ctx, today)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				b.WriteString(formatter.StyleDim.Render("No digest yet for "+today) + "\n")
			case err != nil:
				return err
			default:
				b.WriteString(fmt.Sprintf("Digest for %s: %d items\n", today, len(digest.Items)))
			}

			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}

// hourInWindow reports whether h falls inside [start, end), wrapping
// midnight when start > end.
func hourInWindow(h, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
