package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
	"github.com/mesh-intelligence/mytree/internal/xlsx"
)

func newTemplateCmd(a *App) *cobra.Command {
	var withData bool
	cmd := &cobra.Command{
		Use:   "template [file]",
		Short: "Write the xlsx data-entry template",
		Long: "Write a workbook with Strains, Batches, Images, Trees and TreeImages sheets.\n" +
			"With --with-data the current backend records are written below the headers.\n" +
			"Default file: " + xlsx.DefaultPath,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := xlsx.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			var snap *snapshot.Snapshot
			if withData {
				s, err := a.snapshot(cmd.Context())
				if err != nil {
					return err
				}
				snap = &s
			}
			if err := xlsx.WriteTemplate(path, snap); err != nil {
				return fmt.Errorf("writing template: %w", err)
			}
			return a.output(map[string]any{"path": path}, func() string { return "Created " + path })
		},
	}
	cmd.Flags().BoolVar(&withData, "with-data", false, "include current records")
	return cmd
}
