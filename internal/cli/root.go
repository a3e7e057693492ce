// Package cli defines the revoir command tree.
package cli

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/config"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
)

// App holds the wired collaborators the CLI commands run against.
type App struct {
	Config   *config.Config
	Notes    repository.NoteRepo
	States   repository.ReviewStateRepo
	Digests  repository.DigestRepo
	Sched    *scheduler.Service
	Pipeline *analysis.Pipeline
	Logger   *slog.Logger

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time

	// IsInteractive reports whether stdin/stdout are a terminal.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "revoir" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "revoir",
		Short: "Spaced-repetition maintenance engine for a markdown knowledge base",
	}

	// Accept underscore flag spellings (--quiet_hours style from config
	// muscle memory) as their dashed equivalents.
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.AddCommand(
		newRunCmd(app),
		newWatchCmd(app),
		newStatusCmd(app),
		newDueCmd(app),
		newReviewCmd(app),
		newTriggerCmd(app),
		newPostponeCmd(app),
		newWorkloadCmd(app),
		newAnalyzeCmd(app),
		newDigestCmd(app),
		newNoteCmd(app),
		newImportCmd(app),
	)

	return root
}
