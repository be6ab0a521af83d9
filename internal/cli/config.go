package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change settings in config.yaml",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting, or all of them",
		Long:  "Print the effective value of a setting. Keys: " + strings.Join(config.Keys, ", "),
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.Keys
			if len(args) == 1 {
				keys = args
			}
			values := make(map[string]string, len(keys))
			var b strings.Builder
			for _, k := range keys {
				v, err := a.cfg.Get(k)
				if err != nil {
					return err
				}
				values[k] = v
				if len(args) == 1 {
					b.WriteString(v)
				} else {
					fmt.Fprintf(&b, "%s: %s\n", k, v)
				}
			}
			return a.output(values, func() string { return strings.TrimRight(b.String(), "\n") })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting to config.yaml",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(a.configDir, args[0], args[1]); err != nil {
				return err
			}
			a.logger.Debug("config updated", "key", args[0], "path", config.Path(a.configDir))
			return a.output(map[string]string{args[0]: args[1]}, func() string {
				return fmt.Sprintf("%s set in %s", args[0], config.Path(a.configDir))
			})
		},
	})
	return cmd
}
