package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/store"
	"github.com/mesh-intelligence/mytree/internal/viewer"
)

func newBrowseCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive tree browser",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := store.New(a.client, a.logger)
			applied := make(chan struct{}, 1)
			d := dashboard.New(st, a.client, dashboard.Config{
				Logger:   a.logger,
				Delay:    time.Duration(a.cfg.DebounceMS) * time.Millisecond,
				PageSize: a.cfg.PageSize,
				Language: a.language(),
				OnSearch: viewer.SearchNotifier(applied),
			})
			defer d.Close()

			b := viewer.NewBrowser(ctx, st, d, a.client, applied, a.language())
			_, err := tea.NewProgram(b,
				tea.WithContext(ctx),
				tea.WithInput(a.In),
				tea.WithOutput(a.Out),
				tea.WithAltScreen(),
			).Run()
			return err
		},
	}
}
