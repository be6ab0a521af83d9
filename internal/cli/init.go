package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration directory and config.yaml",
		Long:  "Create the configuration directory and a default config.yaml if missing, then print the resolved settings.",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup already created the directory and file.
			return a.output(a.cfg, func() string {
				return fmt.Sprintf("mytree initialized\nconfig: %s\napi:    %s\nlanguage: %s",
					a.cfg.Path, a.cfg.APIBaseURL, a.cfg.Language)
			})
		},
	}
}
