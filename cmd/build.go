package cmd

import (
	"context"
	"fmt"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/provider"
)

var buildCmd = &cobra.Command{
	Use:   "build [project-dir]",
	Short: "Build a snap in a build instance",
	Long: `Build the snapcraft project in project-dir (default: current directory).

The instance is created on first use, provisioned with core, snapcraft and
the project base from the host, and destroyed when the build ends. With
--keep it is stopped instead, and the next build reuses it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var (
	buildKeep    bool
	buildArch    string
	buildCommand string
	buildOutput  string
)

func init() {
	buildCmd.Flags().BoolVar(&buildKeep, "keep", false, "Stop the instance instead of destroying it")
	buildCmd.Flags().StringVar(&buildArch, "arch", "", "Target architecture (default: host)")
	buildCmd.Flags().StringVar(&buildCommand, "command", "", "Command to run instead of snapcraft, e.g. \"snapcraft prime\"")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Directory receiving the snap (default: project directory)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProvider(projectDir(args), buildArch, buildKeep)
	if err != nil {
		return err
	}

	opts := provider.BuildOptions{OutputDir: buildOutput}
	if buildCommand != "" {
		opts.Command, err = shellquote.Split(buildCommand)
		if err != nil {
			return errors.Wrap(errors.ExitGeneralError, "invalid --command", err)
		}
	} else if opts.OutputDir == "" {
		opts.OutputDir = p.Project().Dir
	}

	logInfo("Building %s on %s in %s", p.Project().Name, p.Backend().Name(), p.InstanceName())

	var artifact string
	err = p.Acquire(cmd.Context(), func(ctx context.Context) error {
		var err error
		artifact, err = p.Build(ctx, opts)
		return err
	})
	if err != nil {
		return err
	}

	if artifact != "" {
		logSuccess("Built %s", artifact)
	} else {
		logSuccess("Build finished")
	}
	if buildKeep {
		fmt.Fprintf(cmd.OutOrStdout(), "Instance %s was kept; run 'snapbox clean' to remove it.\n", p.InstanceName())
	}
	return nil
}
