package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/render"
)

func newStatsCmd(a *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show counts and harvest yield",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			trees := dashboard.Filter(st.Trees(), search)
			s, y := dashboard.ComputeStats(trees), dashboard.ComputeYield(trees)
			return a.output(map[string]any{"stats": s, "yield": y}, func() string {
				return render.StatsBlock(s, y)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only count trees matching this filter")
	return cmd
}
