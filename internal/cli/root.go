// Package cli implements the mytree command-line interface.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/api"
	"github.com/mesh-intelligence/mytree/internal/config"
	"github.com/mesh-intelligence/mytree/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	apiURL    string
	jsonMode  bool
	verbose   bool
	yes       bool
}

// App carries the process streams and the state resolved before a
// subcommand runs.
type App struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	HTTPClient *http.Client
	Now        func() time.Time

	flags     rootFlags
	configDir string
	cfg       *config.Loaded
	client    *api.Client
	logger    *slog.Logger
	stdin     *bufio.Reader
}

// NewApp returns an App wired to the process streams.
func NewApp() *App {
	return &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr, Now: time.Now}
}

// skipSetup lists commands that run without configuration.
var skipSetup = map[string]bool{"version": true, "help": true, "completion": true}

// NewRootCmd creates the top-level "mytree" command with global flags and
// all subcommands registered.
func NewRootCmd(a *App) *cobra.Command {
	if a.Now == nil {
		a.Now = time.Now
	}
	root := &cobra.Command{
		Use:   "mytree",
		Short: "Manage a cultivation journal of trees, strains and batches",
		Long: "mytree is a client for the mytree backend. It lists, edits and deletes\n" +
			"trees, strains, batches, images and journal logs, and exports offline snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir/mytree)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "directory for exports (default: platform data dir/mytree)")
	pf.StringVar(&a.flags.apiURL, "api", "", "backend base URL (overrides config and MYTREE_API_BASE_URL)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log requests to stderr")
	pf.BoolVarP(&a.flags.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newConfigCmd(a),
		newTreesCmd(a),
		newImagesCmd(a),
		newStrainsCmd(a),
		newBatchesCmd(a),
		newLogsCmd(a),
		newStatsCmd(a),
		newBrowseCmd(a),
		newExportCmd(a),
		newTemplateCmd(a),
	)
	return root
}

// setup resolves the logger, configuration and service client.
func (a *App) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.Err, &slog.HandlerOptions{Level: level}))

	if skipSetup[cmd.Name()] {
		return nil
	}

	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = dir

	if a.flags.apiURL != "" {
		a.flags.apiURL = trimBaseURL(a.flags.apiURL)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.flags.apiURL != "" {
		cfg.APIBaseURL = a.flags.apiURL
		if err := cfg.Config.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.client = api.New(cfg.APIBaseURL, a.HTTPClient, a.logger)
	a.logger.Debug("configured", "config", cfg.Path, "api", cfg.APIBaseURL, "language", cfg.Language)
	return nil
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, a *App, args []string) int {
	root := NewRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(a.Err, "Error:", err)
	return ExitCode(err)
}

// Execute runs the root command against os.Args and exits with the
// appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), NewApp(), os.Args[1:]))
}

// usageError marks bad invocations: wrong arguments or flags.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// ExitCode maps err to an exit status. Mistakes the user can fix by
// changing the input exit 1; backend and environment failures exit 2.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return exitUserError
	}
	return exitSysError
}
