package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/paths"
	"github.com/mesh-intelligence/mytree/internal/render"
	"github.com/mesh-intelligence/mytree/internal/snapshot"
	"github.com/mesh-intelligence/mytree/internal/sqlite"
	"github.com/mesh-intelligence/mytree/internal/xlsx"
)

const (
	defaultSnapshotFile = "mytree.db"
	defaultJSONLDir     = "jsonl"
)

func newExportCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write offline snapshots of the journal",
	}
	cmd.AddCommand(newExportSQLiteCmd(a), newExportJSONLCmd(a), newExportInspectCmd(a))
	return cmd
}

// snapshot fetches the three collections into an export snapshot.
func (a *App) snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	st, err := a.loadStore(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Snapshot{Strains: st.Strains(), Batches: st.Batches(), Trees: st.Trees()}, nil
}

// defaultOutput resolves name inside the data directory.
func (a *App) defaultOutput(name string) (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.DataDir)
	if err != nil {
		return "", fmt.Errorf("resolving data dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func newExportSQLiteCmd(a *App) *cobra.Command {
	var fromJSONL string
	cmd := &cobra.Command{
		Use:   "sqlite [file]",
		Short: "Write a SQLite snapshot of trees, strains, batches and images",
		Long: "Write a fresh SQLite file. An existing file is replaced. With --from-jsonl\n" +
			"the snapshot is built from a directory written by 'export jsonl' instead of\n" +
			"the backend.",
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.outputPath(args, defaultSnapshotFile)
			if err != nil {
				return err
			}
			var counts map[string]int
			if fromJSONL != "" {
				counts, err = sqlite.ImportJSONL(cmd.Context(), fromJSONL, path)
			} else {
				snap, serr := a.snapshot(cmd.Context())
				if serr != nil {
					return serr
				}
				counts, err = sqlite.Export(cmd.Context(), path, snap)
			}
			if err != nil {
				return fmt.Errorf("exporting snapshot: %w", err)
			}
			return a.printCounts(path, counts)
		},
	}
	cmd.Flags().StringVar(&fromJSONL, "from-jsonl", "", "build from a JSONL export directory")
	return cmd
}

func newExportJSONLCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonl [dir]",
		Short: "Write one JSONL file per collection",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.outputPath(args, defaultJSONLDir)
			if err != nil {
				return err
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := sqlite.ExportJSONL(dir, snap)
			if err != nil {
				return fmt.Errorf("exporting jsonl: %w", err)
			}
			return a.printCounts(dir, counts)
		},
	}
}

func (a *App) outputPath(args []string, name string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return a.defaultOutput(name)
}

func (a *App) printCounts(path string, counts map[string]int) error {
	return a.output(map[string]any{"path": path, "counts": counts}, func() string {
		var b strings.Builder
		fmt.Fprintf(&b, "Wrote %s\n", path)
		for _, l := range snapshot.Layouts {
			fmt.Fprintf(&b, "  %-12s %s\n", l.Name, humanize.Comma(int64(counts[l.Name])))
		}
		return strings.TrimRight(b.String(), "\n")
	})
}

func newExportInspectCmd(a *App) *cobra.Command {
	var withTrees bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a SQLite snapshot or an xlsx workbook",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.EqualFold(filepath.Ext(path), ".xlsx") {
				sheets, err := xlsx.Inspect(path)
				if err != nil {
					return err
				}
				return a.output(sheets, func() string {
					var b strings.Builder
					for _, s := range sheets {
						fmt.Fprintf(&b, "%-12s %d rows  %s\n", s.Name, s.Rows, strings.Join(s.Headers, ", "))
					}
					return strings.TrimRight(b.String(), "\n")
				})
			}

			r, err := sqlite.OpenSnapshot(path)
			if err != nil {
				return err
			}
			defer r.Close()
			counts, err := r.Counts(cmd.Context())
			if err != nil {
				return err
			}
			if !withTrees {
				return a.printCounts(path, counts)
			}
			trees, err := r.Trees(cmd.Context())
			if err != nil {
				return err
			}
			return a.output(map[string]any{"path": path, "counts": counts, "trees": trees}, func() string {
				return render.TreeTable(trees, render.TreeTableOptions{Language: a.language(), Now: a.Now(), Cursor: -1})
			})
		},
	}
	cmd.Flags().BoolVar(&withTrees, "trees", false, "list the snapshot's trees")
	return cmd
}
