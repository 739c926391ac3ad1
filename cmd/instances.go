package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/snapbox/internal/app"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/logging"
	"github.com/firefly-engineering/snapbox/internal/provider"
	"github.com/firefly-engineering/snapbox/internal/tui"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List build instances",
	Long: `List the build instances of the configured backend.

On a terminal an interactive picker opens:
  Enter  - Open a shell in the selected instance
  d      - Destroy the instance and its provider state
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runInstances,
}

var instancesPlain bool

func init() {
	instancesCmd.Flags().BoolVar(&instancesPlain, "plain", false, "Print a table instead of opening the picker")
	rootCmd.AddCommand(instancesCmd)
}

// isTerminal reports whether stdout is an interactive terminal
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func runInstances(cmd *cobra.Command, args []string) error {
	b, err := app.Default.RequireBackend()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	entries, err := listEntries(ctx, b)
	if err != nil {
		return err
	}

	if instancesPlain || !isTerminal() {
		return printEntries(cmd, entries)
	}

	if len(entries) == 0 {
		logInfo("No build instances found. Create one with: snapbox build <project-dir>")
		return nil
	}

	result, err := tui.RunPicker(entries)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action)

	switch result.Action {
	case tui.ActionShell:
		return shellInto(ctx, b, result.Entry)
	case tui.ActionClean:
		return cleanEntry(ctx, b, result.Entry)
	}
	return nil
}

func listEntries(ctx context.Context, b backend.Backend) ([]*tui.Entry, error) {
	infos, err := b.List(ctx)
	if err != nil {
		return nil, errors.BackendFailed("list", err)
	}

	entries := make([]*tui.Entry, 0, len(infos))
	for _, info := range infos {
		e := &tui.Entry{Backend: b.Name(), Name: info.Name, Status: info.Status}
		if proj, arch, ok := provider.ParseInstanceName(info.Name); ok {
			e.Project = proj
			e.Arch = arch
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func printEntries(cmd *cobra.Command, entries []*tui.Entry) error {
	if len(entries) == 0 {
		fmt.Fprint(cmd.OutOrStdout(), tui.SimplePicker(entries))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBACKEND\tPROJECT\tARCH\tSTATUS")
	fmt.Fprintln(w, "----\t-------\t-------\t----\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Backend, e.Project, e.Arch, e.Status)
	}
	return w.Flush()
}

// shellInto starts a stopped instance and opens a shell in it. The instance
// is left running.
func shellInto(ctx context.Context, b backend.Backend, e *tui.Entry) error {
	if e.Status != backend.StatusRunning {
		if err := b.Start(ctx, e.Name); err != nil {
			return errors.BackendFailed("start", err)
		}
	}
	if err := b.Shell(ctx, e.Name); err != nil {
		return errors.BackendFailed("shell", err)
	}
	return nil
}

// cleanEntry destroys an instance picked from the list, along with its
// provider project directory and event log when its name parses.
func cleanEntry(ctx context.Context, b backend.Backend, e *tui.Entry) error {
	if err := b.Destroy(ctx, e.Name); err != nil {
		return errors.BackendFailed("destroy", err)
	}

	if e.Project != "" {
		dir, err := paths().ProviderProjectDir(e.Project, b.Name())
		if err != nil {
			return err
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	if err := app.Default.Audit.Remove(e.Name); err != nil {
		logWarning("Failed to remove event log of %s: %v", e.Name, err)
	}

	logSuccess("Removed %s", e.Name)
	return nil
}
