package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/store"
	"github.com/mesh-intelligence/mytree/internal/viewer"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func newImagesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "View and delete tree images",
	}
	cmd.AddCommand(newImagesDeleteCmd(a), newImagesViewCmd(a))
	return cmd
}

func newImagesDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tree-id> <image-id>",
		Short: "Delete one image of a tree",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			treeID, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			imageID, err := parseID("image", args[1])
			if err != nil {
				return err
			}
			tree, err := a.client.GetTree(cmd.Context(), treeID)
			if err != nil {
				return err
			}
			if !hasImage(tree, imageID) {
				return fmt.Errorf("image %d of tree %d: %w", imageID, treeID, types.ErrNotFound)
			}
			if err := a.confirm(fmt.Sprintf("Delete image #%d of tree #%d?", imageID, treeID)); err != nil {
				return err
			}
			if err := a.client.DeleteImage(cmd.Context(), imageID); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Image deleted")
			return nil
		},
	}
}

func newImagesViewCmd(a *App) *cobra.Command {
	var start int
	cmd := &cobra.Command{
		Use:   "view <tree-id>",
		Short: "Page through a tree's images",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			tree, err := a.client.GetTree(cmd.Context(), id)
			if err != nil {
				return err
			}
			st := store.New(a.client, a.logger)
			v := viewer.NewViewer(cmd.Context(), tree, a.client, st, start-1, viewer.WithNow(a.Now))
			_, err = tea.NewProgram(v,
				tea.WithContext(cmd.Context()),
				tea.WithInput(a.In),
				tea.WithOutput(a.Out),
				tea.WithAltScreen(),
			).Run()
			return err
		},
	}
	cmd.Flags().IntVar(&start, "start", 1, "image to open first (1-based)")
	return cmd
}

func hasImage(t types.Tree, imageID int64) bool {
	for _, img := range t.Images {
		if img.ID == imageID {
			return true
		}
	}
	return false
}
