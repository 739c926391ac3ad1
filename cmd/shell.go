package cmd

import (
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell [project-dir]",
	Short: "Open a shell in the project's build instance",
	Long: `Open an interactive shell in the build instance of the project in
project-dir, creating and provisioning it first if needed. The instance is
destroyed when the shell exits unless --keep is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,
}

var (
	shellKeep bool
	shellArch string
)

func init() {
	shellCmd.Flags().BoolVar(&shellKeep, "keep", false, "Stop the instance instead of destroying it")
	shellCmd.Flags().StringVar(&shellArch, "arch", "", "Target architecture (default: host)")
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	p, err := loadProvider(projectDir(args), shellArch, shellKeep)
	if err != nil {
		return err
	}
	return p.Acquire(cmd.Context(), p.Shell)
}
