package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/snapbox/internal/app"
	"github.com/firefly-engineering/snapbox/internal/backend"
	"github.com/firefly-engineering/snapbox/internal/logging"
)

var (
	verbose     bool
	jsonOutput  bool
	backendFlag string
	stateRoot   string
)

var rootCmd = &cobra.Command{
	Use:   "snapbox",
	Short: "Build snaps in disposable instances",
	Long: `snapbox builds snapcraft projects inside an ephemeral build instance.

Each build:
  - launches (or reuses) an instance on multipass, docker or podman
  - injects core, snapcraft and the project base from the host's snaps
  - runs snapcraft with the project mounted
  - destroys the instance afterwards, even when the build fails`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		if app.Default != nil {
			return nil
		}
		a, err := app.New(
			app.WithBackendType(backend.Type(backendFlag)),
			app.WithStateRoot(stateRoot),
		)
		if err != nil {
			return err
		}
		app.SetDefault(a)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context; an acquired instance is still destroyed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Backend to use: auto, multipass, docker or podman (default from config)")
	rootCmd.PersistentFlags().StringVar(&stateRoot, "state-root", "", "Directory holding provider state (default from config)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
