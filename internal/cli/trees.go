package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/form"
	"github.com/mesh-intelligence/mytree/internal/preview"
	"github.com/mesh-intelligence/mytree/internal/render"
	"github.com/mesh-intelligence/mytree/internal/store"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func newTreesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trees",
		Aliases: []string{"tree"},
		Short:   "List, show, create, update and delete trees",
	}
	cmd.AddCommand(
		newTreesListCmd(a),
		newTreesShowCmd(a),
		newTreeEditCmd(a, false),
		newTreeEditCmd(a, true),
		newTreesDeleteCmd(a),
		newTreesBulkDeleteCmd(a),
		newTreesDeleteDocumentCmd(a),
		newTreesDeleteImagesCmd(a),
		newTreesQRCmd(a),
		newTreesVerifyCmd(a),
	)
	return cmd
}

type listOptions struct {
	search  string
	sort    string
	asc     bool
	page    int
	perPage int
	ageUnit string
}

func (o *listOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "filter by strain, nickname, location or batch code")
	cmd.Flags().StringVar(&o.sort, "sort", string(dashboard.SortID), "sort key")
	cmd.Flags().BoolVar(&o.asc, "asc", false, "sort ascending")
	cmd.Flags().IntVar(&o.page, "page", 1, "page number")
	cmd.Flags().IntVar(&o.perPage, "per-page", 0, "trees per page (default: page_size from config)")
	cmd.Flags().StringVar(&o.ageUnit, "age-unit", string(dashboard.AgeDays), "age column unit: day, month or year")
}

// newDashboard loads the store and applies the list options.
func (a *App) newDashboard(ctx context.Context, o listOptions) (*store.Store, *dashboard.Dashboard, error) {
	key, err := dashboard.ParseSortKey(o.sort)
	if err != nil {
		return nil, nil, err
	}
	st, err := a.loadStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	d := dashboard.New(st, a.client, dashboard.Config{
		Confirmer: a.Confirmer(),
		Logger:    a.logger,
		PageSize:  a.cfg.PageSize,
		Language:  a.language(),
	})
	dir := dashboard.Desc
	if o.asc {
		dir = dashboard.Asc
	}
	d.SetOrder(key, dir)
	d.SetSearchNow(o.search)
	if o.perPage > 0 {
		d.SetPageSize(o.perPage)
	}
	d.SetPage(o.page)
	return st, d, nil
}

func newTreesListCmd(a *App) *cobra.Command {
	var o listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trees",
		Long:  "List trees newest first. Sort keys: " + sortKeyNames(),
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := dashboard.ParseAgeUnit(o.ageUnit)
			if err != nil {
				return usageError{err}
			}
			_, d, err := a.newDashboard(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer d.Close()

			p := d.CurrentPage()
			return a.output(p.Trees, func() string {
				if p.Total == 0 {
					return "No trees."
				}
				table := render.TreeTable(p.Trees, render.TreeTableOptions{
					Language: a.language(),
					AgeUnit:  unit,
					Now:      a.Now(),
					Cursor:   -1,
				})
				return fmt.Sprintf("%s\npage %d/%d, %d trees", table, p.Number, p.Count, p.Total)
			})
		},
	}
	o.register(cmd)
	return cmd
}

func sortKeyNames() string {
	names := make([]string, len(dashboard.SortKeys))
	for i, k := range dashboard.SortKeys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newTreesShowCmd(a *App) *cobra.Command {
	var withLogs bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one tree",
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
			var logs []types.TreeLog
			if withLogs {
				if logs, err = a.client.ListLogs(cmd.Context(), id); err != nil {
					return err
				}
			}
			if a.flags.jsonMode {
				if withLogs {
					return printJSON(a.Out, map[string]any{"tree": tree, "logs": logs})
				}
				return printJSON(a.Out, tree)
			}
			fmt.Fprintln(a.Out, render.TreeCard(tree, a.language(), a.Now()))
			if withLogs {
				fmt.Fprintln(a.Out, render.Timeline(logs, a.language(), a.Now()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withLogs, "logs", false, "include the journal timeline")
	return cmd
}

// treeFlags binds one string flag per draft field. Underscores in field
// names become dashes.
type treeFlags struct {
	values    map[string]*string
	notesFile string
	images    []string
	document  string
}

func flagName(field string) string { return strings.ReplaceAll(field, "_", "-") }

func (f *treeFlags) register(cmd *cobra.Command) {
	f.values = make(map[string]*string)
	for _, name := range form.FieldNames() {
		v := new(string)
		f.values[name] = v
		usage := strings.ReplaceAll(name, "_", " ")
		switch {
		case name == "strain":
			usage = "strain name (must exist)"
		case name == "status":
			usage = "status: alive, dead, moved, other or a stored value"
		case strings.HasSuffix(name, "_date"):
			usage += " (YYYY-MM-DD)"
		case form.IsNumeric(name):
			usage += " (number, empty to clear)"
		}
		cmd.Flags().StringVar(v, flagName(name), "", usage)
	}
	cmd.Flags().StringVar(&f.notesFile, "notes-file", "", "read notes from a file")
	cmd.Flags().StringArrayVar(&f.images, "image", nil, "image file to upload (repeatable)")
	cmd.Flags().StringVar(&f.document, "document", "", "PDF, JPEG, PNG or WEBP document to attach")
}

// apply copies every changed flag into the form.
func (f *treeFlags) apply(cmd *cobra.Command, tf *form.TreeForm) error {
	for _, name := range form.FieldNames() {
		if !cmd.Flags().Changed(flagName(name)) {
			continue
		}
		value := *f.values[name]
		inputType := "text"
		switch {
		case form.IsNumeric(name):
			inputType = "number"
		case strings.HasSuffix(name, "_date"):
			inputType = "date"
		case name == "status":
			value = types.ParseStatus(value)
		}
		if err := tf.HandleInputChange(name, value, inputType); err != nil {
			return err
		}
	}
	if f.notesFile != "" {
		data, err := os.ReadFile(f.notesFile)
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		if err := tf.SetFieldValue("notes", string(data)); err != nil {
			return err
		}
	}
	if len(f.images) > 0 {
		files, err := upload.FromPaths(f.images)
		if err != nil {
			return err
		}
		if err := tf.SetImageFiles(files); err != nil {
			return err
		}
	}
	if f.document != "" {
		doc, err := upload.FromPath(f.document)
		if err != nil {
			return err
		}
		if err := tf.SetDocument(doc); err != nil {
			return err
		}
	}
	return nil
}

func newTreeEditCmd(a *App, update bool) *cobra.Command {
	var flags treeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a tree",
		Args:  exactArgs(0),
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update a tree; only the given flags change"
		cmd.Args = exactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		strains, err := a.client.ListStrains(ctx)
		if err != nil {
			return err
		}
		tf := form.NewTreeForm(a.client, preview.NewMemoryRegistry(),
			form.WithClock(a.Now),
			form.WithLanguage(a.language()),
			form.WithStrains(func() []types.Strain { return strains }),
			form.OnSuccess(func(_ context.Context, t types.Tree) error {
				a.logger.Debug("tree saved", "id", t.ID)
				return nil
			}),
		)
		defer tf.Close()

		if update {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			current, err := a.client.GetTree(ctx, id)
			if err != nil {
				return err
			}
			tf.SetForEdit(current)
		}
		if err := flags.apply(cmd, tf); err != nil {
			return err
		}
		a.logger.Debug("submitting tree", "editing", tf.EditingID(), "images", len(tf.PreviewURLs()))

		tree, err := tf.Submit(ctx)
		if err != nil {
			if msg := tf.Err(); msg != "" && msg != err.Error() {
				return fmt.Errorf("%s: %w", msg, err)
			}
			return err
		}
		return a.output(tree, func() string { return render.TreeCard(tree, a.language(), a.Now()) })
	}
	flags.register(cmd)
	return cmd
}

func newTreesDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete trees one by one, confirming each",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("tree", args)
			if err != nil {
				return err
			}
			st := store.New(a.client, a.logger)
			d := dashboard.New(st, a.client, dashboard.Config{
				Confirmer: a.Confirmer(),
				Logger:    a.logger,
				Language:  a.language(),
			})
			defer d.Close()
			for _, id := range ids {
				if err := d.DeleteTree(cmd.Context(), id); err != nil {
					a.printToast(d)
					return err
				}
				a.printToast(d)
			}
			return nil
		},
	}
}

func newTreesBulkDeleteCmd(a *App) *cobra.Command {
	var (
		search string
		server bool
	)
	cmd := &cobra.Command{
		Use:   "bulk-delete [id...]",
		Short: "Delete several trees after one confirmation",
		Long: "Delete the given trees, or every tree matching --search, after a single\n" +
			"confirmation. Deletes run one at a time in ascending id order and continue\n" +
			"past failures; --server sends one bulk request instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("tree", args)
			if err != nil {
				return err
			}
			if len(ids) == 0 && search == "" {
				return usageError{fmt.Errorf("give tree ids or --search")}
			}
			_, d, err := a.newDashboard(cmd.Context(), listOptions{search: search, sort: string(dashboard.SortID)})
			if err != nil {
				return err
			}
			defer d.Close()

			if len(ids) > 0 {
				for _, id := range ids {
					d.Select(id, true)
				}
			} else {
				visible := d.Visible()
				vids := make([]int64, len(visible))
				for i, t := range visible {
					vids[i] = t.ID
				}
				d.SelectAll(true, vids)
			}

			var res dashboard.BulkResult
			if server {
				res, err = d.BulkDeleteServer(cmd.Context())
			} else {
				res, err = d.BulkDelete(cmd.Context())
			}
			if a.flags.jsonMode && res.Requested > 0 {
				failed := make(map[string]string, len(res.Failed))
				for id, e := range res.Failed {
					failed[fmt.Sprint(id)] = e.Error()
				}
				if perr := printJSON(a.Out, map[string]any{
					"requested": res.Requested, "deleted": res.Deleted, "failed": failed,
				}); perr != nil {
					return perr
				}
			} else {
				a.printToast(d)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "select every tree matching this filter")
	cmd.Flags().BoolVar(&server, "server", false, "use the backend bulk endpoint")
	return cmd
}

func (a *App) printToast(d *dashboard.Dashboard) {
	if a.flags.jsonMode {
		return
	}
	if t, ok := d.Toasts().Latest(); ok {
		fmt.Fprintln(a.Out, render.Toast(t))
	}
}

func newTreesDeleteDocumentCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-document <id>",
		Short: "Remove the document attached to a tree",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Delete the document of tree #%d?", id)); err != nil {
				return err
			}
			if err := a.client.DeleteTreeDocument(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Document deleted")
			return nil
		},
	}
}

func newTreesDeleteImagesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-images <id>",
		Short: "Remove every image of a tree",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Delete all images of tree #%d?", id)); err != nil {
				return err
			}
			if err := a.client.DeleteAllTreeImages(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "All images deleted")
			return nil
		},
	}
}
