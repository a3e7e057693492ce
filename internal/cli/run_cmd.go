package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lmercadier/revoir/internal/ingest"
	"github.com/lmercadier/revoir/internal/worker"
)

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the review loop as a foreground daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loop := worker.New(app.Config.Worker.Options(), app.loopDeps(), app.Clock, nil)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return loop.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				loop.Stop()
				return nil
			})

			if app.Config.Vault.Path != "" && app.Config.Vault.Watch {
				importer := ingest.NewImporter(app.Notes, app.Config.Vault.Path, app.Logger)
				collab := ingest.NewSchedulerCollaborator(app.Sched, app.States, app.Logger)
				g.Go(func() error {
					return ingest.Watch(gctx, importer, collab, app.Config.Vault.Path, app.Logger)
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), "revoir loop running; Ctrl-C to stop")
			return g.Wait()
		},
	}
}

// loopDeps assembles the worker dependencies from the app wiring. The
// index refresh re-imports the vault so externally created files join
// the schedule without a restart.
func (a *App) loopDeps() worker.Deps {
	collab := ingest.NewSchedulerCollaborator(a.Sched, a.States, a.Logger)

	deps := worker.Deps{
		Sched:     a.Sched,
		Pipeline:  a.Pipeline,
		Notes:     a.Notes,
		States:    a.States,
		Digests:   a.Digests,
		Collab:    collab,
		Logger:    a.Logger,
		Observers: []worker.Observer{worker.LogObserver{Logger: a.Logger}},
	}

	if a.Config.Vault.Path != "" {
		importer := ingest.NewImporter(a.Notes, a.Config.Vault.Path, a.Logger)
		deps.RefreshIndex = func(ctx context.Context) error {
			notes, err := importer.ImportAll(ctx, a.now())
			if err != nil {
				return err
			}
			return collab.Process(ctx, notes, a.now())
		}
	}

	return deps
}
