package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/mytree"

// Version is set at build time with -ldflags "-X".
var Version = "0.1.0"

func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mytree version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.output(map[string]string{"version": Version, "module": modulePath}, func() string {
				return fmt.Sprintf("mytree v%s\nmodule: %s", Version, modulePath)
			})
		},
	}
}
