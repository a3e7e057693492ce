package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lmercadier/revoir/internal/cli/formatter"
	"github.com/lmercadier/revoir/internal/worker"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the review loop with a live dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive() {
				return fmt.Errorf("watch needs a terminal; use 'revoir run' for headless operation")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			loop := worker.New(app.Config.Worker.Options(), app.loopDeps(), app.Clock, nil)

			errCh := make(chan error, 1)
			go func() {
				errCh <- loop.Run(ctx)
			}()

			m := newWatchModel(app, loop)
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, teaErr := p.Run()

			loop.Stop()
			cancel()
			if runErr := <-errCh; runErr != nil {
				return runErr
			}
			return teaErr
		},
	}
}

// watchRefreshInterval paces snapshot polls; the loop itself runs at
// its own cadence.
const watchRefreshInterval = 2 * time.Second

type watchKeyMap struct {
	Pause  key.Binding
	Resume key.Binding
	Quit   key.Binding
}

func defaultWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resume"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type watchTickMsg time.Time

// watchModel is the bubbletea Model for the live dashboard. It only
// reads loop state through Status and steers it through Pause/Resume.
type watchModel struct {
	app  *App
	loop *worker.Loop
	keys watchKeyMap

	spin spinner.Model
	snap worker.Snapshot
}

func newWatchModel(app *App, loop *worker.Loop) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(formatter.ColorPurple)

	return watchModel{
		app:  app,
		loop: loop,
		keys: defaultWatchKeyMap(),
		spin: sp,
		snap: loop.Status(app.now()),
	}
}

func watchTick() tea.Cmd {
	return tea.Tick(watchRefreshInterval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, watchTick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case watchTickMsg:
		m.snap = m.loop.Status(m.app.now())
		return m, watchTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.loop.Pause()
			m.snap = m.loop.Status(m.app.now())
			return m, nil
		case key.Matches(msg, m.keys.Resume):
			m.loop.Resume()
			m.snap = m.loop.Status(m.app.now())
			return m, nil
		}
	}

	return m, nil
}

func (m watchModel) View() string {
	header := formatter.StyleHeader.Render("revoir") + " " + m.spin.View()
	body := formatter.FormatStatus(m.snap)
	help := formatter.StyleDim.Render("p pause · r resume · q quit")
	return header + "\n\n" + body + "\n" + help + "\n"
}
