package cmd

import (
	"github.com/firefly-engineering/snapbox/internal/app"
	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/project"
	"github.com/firefly-engineering/snapbox/internal/provider"
)

// paths returns the configured paths of the default app.
func paths() *config.Paths {
	return app.Default.Paths
}

// projectDir returns the project directory argument, defaulting to ".".
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadProvider loads the project in dir and creates its provider.
// An empty arch builds for the host.
func loadProvider(dir, arch string, keep bool) (*provider.Provider, error) {
	proj, err := project.Load(dir, arch)
	if err != nil {
		return nil, err
	}
	return app.Default.NewProvider(proj, keep)
}
