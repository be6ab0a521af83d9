package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/form"
	"github.com/mesh-intelligence/mytree/internal/render"
	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func newLogsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"log"},
		Short:   "Read and write a tree's journal",
	}
	cmd.AddCommand(newLogsListCmd(a), newLogsAddCmd(a), newLogsDeleteCmd(a))
	return cmd
}

func newLogsListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <tree-id>",
		Short: "Show the journal timeline, newest first",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			logs, err := a.client.ListLogs(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.output(logs, func() string { return render.Timeline(logs, a.language(), a.Now()) })
		},
	}
}

func newLogsAddCmd(a *App) *cobra.Command {
	var (
		in        form.LogForm
		notesFile string
		images    []string
	)
	cmd := &cobra.Command{
		Use:   "add <tree-id>",
		Short: "Add a journal entry",
		Long:  "Add a journal entry. Actions: " + strings.Join(types.ActionTypes, ", "),
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			f := form.NewLogForm(a.client, id, form.WithClock(a.Now), form.WithLanguage(a.language()))
			set := func(flag string, dst *string, v string) {
				if cmd.Flags().Changed(flag) {
					*dst = v
				}
			}
			set("action", &f.ActionType, in.ActionType)
			set("date", &f.ActionDate, in.ActionDate)
			set("title", &f.Title, in.Title)
			set("notes", &f.Notes, in.Notes)
			set("ph", &f.PH, in.PH)
			set("ec", &f.EC, in.EC)
			set("temp", &f.Temp, in.Temp)
			set("humidity", &f.Humidity, in.Humidity)
			set("wet-weight", &f.WetWeight, in.WetWeight)
			set("dry-weight", &f.DryWeight, in.DryWeight)
			set("trim-weight", &f.TrimWeight, in.TrimWeight)
			if notesFile != "" {
				data, err := os.ReadFile(notesFile)
				if err != nil {
					return fmt.Errorf("read notes: %w", err)
				}
				f.Notes = string(data)
			}
			if len(images) > 0 {
				files, err := upload.FromPaths(images)
				if err != nil {
					return err
				}
				if err := f.SetImages(files); err != nil {
					return err
				}
			}
			l, err := f.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return a.output(l, func() string {
				return fmt.Sprintf("%s Logged %s on %s for tree #%d", render.ActionIcon(l.ActionType), l.ActionType, l.ActionDate, id)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.ActionType, "action", types.ActionNote, "action type")
	fl.StringVar(&in.ActionDate, "date", "", "action date (YYYY-MM-DD, default today)")
	fl.StringVar(&in.Title, "title", "", "short title")
	fl.StringVar(&in.Notes, "notes", "", "notes")
	fl.StringVar(&notesFile, "notes-file", "", "read notes from a file")
	fl.StringVar(&in.PH, "ph", "", "pH reading")
	fl.StringVar(&in.EC, "ec", "", "EC reading")
	fl.StringVar(&in.Temp, "temp", "", "temperature (°C)")
	fl.StringVar(&in.Humidity, "humidity", "", "relative humidity (%)")
	fl.StringVar(&in.WetWeight, "wet-weight", "", "wet weight (g)")
	fl.StringVar(&in.DryWeight, "dry-weight", "", "dry weight (g)")
	fl.StringVar(&in.TrimWeight, "trim-weight", "", "trim weight (g)")
	fl.StringArrayVar(&images, "image", nil, "image file to attach (repeatable)")
	return cmd
}

func newLogsDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tree-id> <log-id>",
		Short: "Delete a journal entry",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			treeID, err := parseID("tree", args[0])
			if err != nil {
				return err
			}
			logID, err := parseID("log", args[1])
			if err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Delete log #%d of tree #%d?", logID, treeID)); err != nil {
				return err
			}
			if err := a.client.DeleteLog(cmd.Context(), treeID, logID); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Deleted log #%d\n", logID)
			return nil
		},
	}
}
