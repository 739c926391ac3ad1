package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry [project]",
	Short: "Show the snaps injected into build instances",
	Long: `Show the snap registry of every provider project, or only of the named
project. Each row is the latest injection of a snap; --history shows all of
them, oldest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegistry,
}

var registryHistory bool

func init() {
	registryCmd.Flags().BoolVar(&registryHistory, "history", false, "Show every recorded injection")
	rootCmd.AddCommand(registryCmd)
}

func runRegistry(cmd *cobra.Command, args []string) error {
	states, err := config.ListProjectStates(paths())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		var filtered []*config.ProjectState
		for _, s := range states {
			if s.Project == args[0] {
				filtered = append(filtered, s)
			}
		}
		states = filtered
	}

	if len(states) == 0 {
		logInfo("No provider projects found. Create one with: snapbox build <project-dir>")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tBACKEND\tSNAP\tREVISION\tINSTANCE\tINJECTED")
	fmt.Fprintln(w, "-------\t-------\t----\t--------\t--------\t--------")

	for _, s := range states {
		reg, err := registry.Load(filepath.Join(s.Dir, registry.FileName))
		if err != nil {
			logWarning("Skipping %s/%s: %v", s.Project, s.Backend, err)
			continue
		}

		for _, name := range reg.Names() {
			records := reg.History(name)
			if len(records) == 0 {
				continue
			}
			if !registryHistory {
				records = records[len(records)-1:]
			}
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.Project, s.Backend, name, rec.Revision,
					shortID(rec.InstanceID), rec.InjectedAt.Local().Format("2006-01-02 15:04:05"))
			}
		}
	}

	return w.Flush()
}

// shortID abbreviates an instance ID for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
