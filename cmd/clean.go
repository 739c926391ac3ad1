package cmd

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [project-dir]",
	Short: "Remove the project's build instance and provider state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

var cleanArch string

func init() {
	cleanCmd.Flags().StringVar(&cleanArch, "arch", "", "Target architecture (default: host)")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProvider(projectDir(args), cleanArch, false)
	if err != nil {
		return err
	}

	if err := p.Clean(cmd.Context()); err != nil {
		return err
	}

	logSuccess("Removed %s and %s", p.InstanceName(), p.ProviderProjectDir())
	return nil
}
