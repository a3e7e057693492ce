package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/ingest"
)

func newImportCmd(app *App) *cobra.Command {
	var vault string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import markdown notes from the vault and schedule them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if vault == "" {
				vault = app.Config.Vault.Path
			}
			if vault == "" {
				return fmt.Errorf("no vault path; set vault.path in config or pass --vault")
			}

			ctx := context.Background()
			now := app.now()

			importer := ingest.NewImporter(app.Notes, vault, app.Logger)
			notes, err := importer.ImportAll(ctx, now)
			if err != nil {
				return err
			}

			collab := ingest.NewSchedulerCollaborator(app.Sched, app.States, app.Logger)
			if err := collab.Process(ctx, notes, now); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes from %s\n", len(notes), vault)
			return nil
		},
	}

	cmd.Flags().StringVar(&vault, "vault", "", "vault directory (defaults to configured vault.path)")
	return cmd
}
