package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mytree/internal/config"
	"github.com/mesh-intelligence/mytree/internal/dashboard"
	"github.com/mesh-intelligence/mytree/internal/store"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// userErrors are sentinels that exit with exitUserError.
var userErrors = []error{
	types.ErrValidation,
	types.ErrDeclined,
	types.ErrNotFound,
	types.ErrEmptySelection,
	types.ErrInvalidSortKey,
	types.ErrInvalidLanguage,
	types.ErrFileType,
	types.ErrFileTooLarge,
	types.ErrUnknownField,
	types.ErrAPIBaseURLEmpty,
	types.ErrAPIBaseURLInvalid,
	config.ErrUnknownKey,
}

func trimBaseURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// exactArgs wraps cobra.ExactArgs so a wrong count exits as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func minArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.MinimumNArgs(n))
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(lo, hi))
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// parseID parses a positive numeric id argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError{fmt.Errorf("invalid %s id %q", what, s)}
	}
	return id, nil
}

func parseIDs(what string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(what, s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// language returns the configured display language.
func (a *App) language() string {
	if a.cfg == nil {
		return types.DefaultLanguage
	}
	return a.cfg.Language
}

// output prints v as JSON in --json mode, otherwise the text from human.
func (a *App) output(v any, human func() string) error {
	if a.flags.jsonMode {
		return printJSON(a.Out, v)
	}
	fmt.Fprintln(a.Out, human())
	return nil
}

// loadStore fetches trees, strains and batches concurrently.
func (a *App) loadStore(ctx context.Context) (*store.Store, error) {
	st := store.New(a.client, a.logger)
	if err := st.Load(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// Confirmer returns the y/N prompt used before destructive calls. With
// --yes every question is answered yes.
func (a *App) Confirmer() dashboard.Confirmer {
	if a.flags.yes {
		return dashboard.ConfirmFunc(func(string) (bool, error) { return true, nil })
	}
	if a.stdin == nil {
		a.stdin = bufio.NewReader(a.In)
	}
	return dashboard.ConfirmFunc(func(prompt string) (bool, error) {
		fmt.Fprintf(a.Err, "%s [y/N]: ", prompt)
		line, err := a.stdin.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

// confirm asks prompt and returns types.ErrDeclined on a no.
func (a *App) confirm(prompt string) error {
	ok, err := a.Confirmer().Confirm(prompt)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrDeclined
	}
	return nil
}
