package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/form"
	"github.com/mesh-intelligence/mytree/internal/render"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func newStrainsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "strains",
		Aliases: []string{"strain"},
		Short:   "Manage the strain catalog",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List strains",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				strains, err := a.client.ListStrains(cmd.Context())
				if err != nil {
					return err
				}
				return a.output(strains, func() string { return render.StrainTable(strains) })
			},
		},
		newStrainEditCmd(a, false),
		newStrainEditCmd(a, true),
		newCatalogDeleteCmd(a, "strain", func(cmd *cobra.Command, id int64) error {
			return a.client.DeleteStrain(cmd.Context(), id)
		}),
	)
	return cmd
}

func newStrainEditCmd(a *App, update bool) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{Use: "add", Short: "Create a strain", Args: exactArgs(0)}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update <id>", "Update a strain", exactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		strains, err := a.client.ListStrains(cmd.Context())
		if err != nil {
			return err
		}
		f := form.NewStrainForm(a.client, func() []types.Strain { return strains }, a.language())
		if update {
			id, err := parseID("strain", args[0])
			if err != nil {
				return err
			}
			current, ok := findStrain(strains, id)
			if !ok {
				return fmt.Errorf("strain %d: %w", id, types.ErrNotFound)
			}
			f.SetForEdit(current)
		}
		if cmd.Flags().Changed("name") {
			f.Name = name
		}
		if cmd.Flags().Changed("description") {
			f.Description = description
		}
		s, err := f.Submit(cmd.Context())
		if err != nil {
			return err
		}
		return a.output(s, func() string { return fmt.Sprintf("Saved strain #%d %s", s.ID, s.Name) })
	}
	cmd.Flags().StringVar(&name, "name", "", "strain name (unique)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	return cmd
}

func findStrain(strains []types.Strain, id int64) (types.Strain, bool) {
	for _, s := range strains {
		if s.ID == id {
			return s, true
		}
	}
	return types.Strain{}, false
}

func newBatchesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "batches",
		Aliases: []string{"batch"},
		Short:   "Manage planting batches",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List batches",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				batches, err := a.client.ListBatches(cmd.Context())
				if err != nil {
					return err
				}
				return a.output(batches, func() string { return render.BatchTable(batches) })
			},
		},
		newBatchEditCmd(a, false),
		newBatchEditCmd(a, true),
		newCatalogDeleteCmd(a, "batch", func(cmd *cobra.Command, id int64) error {
			return a.client.DeleteBatch(cmd.Context(), id)
		}),
	)
	return cmd
}

func newBatchEditCmd(a *App, update bool) *cobra.Command {
	var code, description, started string
	cmd := &cobra.Command{Use: "add", Short: "Create a batch", Args: exactArgs(0)}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update <id>", "Update a batch", exactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		batches, err := a.client.ListBatches(cmd.Context())
		if err != nil {
			return err
		}
		f := form.NewBatchForm(a.client, func() []types.Batch { return batches }, a.language())
		if update {
			id, err := parseID("batch", args[0])
			if err != nil {
				return err
			}
			current, ok := findBatch(batches, id)
			if !ok {
				return fmt.Errorf("batch %d: %w", id, types.ErrNotFound)
			}
			f.SetForEdit(current)
		}
		if cmd.Flags().Changed("code") {
			f.BatchCode = code
		}
		if cmd.Flags().Changed("description") {
			f.Description = description
		}
		if cmd.Flags().Changed("started") {
			f.StartedDate = started
		}
		b, err := f.Submit(cmd.Context())
		if err != nil {
			return err
		}
		return a.output(b, func() string { return fmt.Sprintf("Saved batch #%d %s", b.ID, b.BatchCode) })
	}
	cmd.Flags().StringVar(&code, "code", "", "batch code (unique)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().StringVar(&started, "started", "", "start date (YYYY-MM-DD)")
	return cmd
}

func findBatch(batches []types.Batch, id int64) (types.Batch, bool) {
	for _, b := range batches {
		if b.ID == id {
			return b, true
		}
	}
	return types.Batch{}, false
}

// newCatalogDeleteCmd builds "delete <id>" for a catalog collection.
func newCatalogDeleteCmd(a *App, what string, del func(*cobra.Command, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + what,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(what, args[0])
			if err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Delete %s #%d?", what, id)); err != nil {
				return err
			}
			if err := del(cmd, id); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Deleted %s #%d\n", what, id)
			return nil
		},
	}
}
