package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/snapbox/internal/errors"
)

const (
	// AppName names the config and state directories
	AppName = "snapbox"

	// ConfigFileName is the host config file inside the config directory
	ConfigFileName = "config.toml"

	// InstanceIDFile holds the ID of the current instance incarnation
	InstanceIDFile = "instance-id"

	DefaultSnapMountDir = "/snap"
	DefaultSnapsDir     = "/var/lib/snapd/snaps"
)

// validBackends lists the accepted values of HostConfig.Backend
var validBackends = map[string]bool{"auto": true, "multipass": true, "docker": true, "podman": true}

// HostConfig represents the host configuration from config.toml
type HostConfig struct {
	StateRoot     string            `toml:"state_root"`
	Backend       string            `toml:"backend"`
	KeepInstance  bool              `toml:"keep_instance"`
	SnapMountDir  string            `toml:"snap_mount_dir"`
	SnapsDir      string            `toml:"snaps_dir"`
	AssertionsDir string            `toml:"assertions_dir"`
	Images        map[string]string `toml:"images"`
	CPUs          int               `toml:"cpus"`
	MemoryMB      int               `toml:"memory_mb"`
}

// DefaultHostConfig returns the configuration used when no file exists
func DefaultHostConfig() *HostConfig {
	return &HostConfig{
		Backend:      "auto",
		SnapMountDir: DefaultSnapMountDir,
		SnapsDir:     DefaultSnapsDir,
	}
}

// Validate checks that the HostConfig is valid.
func (c *HostConfig) Validate() error {
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend: %s (must be auto, multipass, docker, or podman)", c.Backend)
	}
	if c.CPUs < 0 {
		return fmt.Errorf("cpus must not be negative (got %d)", c.CPUs)
	}
	if c.MemoryMB < 0 {
		return fmt.Errorf("memory_mb must not be negative (got %d)", c.MemoryMB)
	}
	for key, dir := range map[string]string{
		"state_root":     c.StateRoot,
		"snap_mount_dir": c.SnapMountDir,
		"snaps_dir":      c.SnapsDir,
		"assertions_dir": c.AssertionsDir,
	} {
		if dir != "" && !filepath.IsAbs(dir) {
			return fmt.Errorf("%s must be an absolute path (got %q)", key, dir)
		}
	}
	return nil
}

// LoadHostConfig loads config.toml from configDir. A missing file yields
// the defaults; unknown keys are rejected so typos do not go unnoticed.
func LoadHostConfig(configDir string) (*HostConfig, error) {
	cfg := DefaultHostConfig()

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.ConfigError("failed to read host config", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.ConfigError("failed to parse host config", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.ConfigError(fmt.Sprintf("unknown keys in %s: %s", configPath, strings.Join(keys, ", ")), nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid host config", err)
	}

	return cfg, nil
}

// Paths holds the configured paths
type Paths struct {
	ConfigDir   string
	StateRoot   string
	ProjectsDir string
	LogsDir     string
}

// DefaultPaths returns the XDG based path configuration
func DefaultPaths() *Paths {
	return &Paths{
		ConfigDir: filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppName),
		StateRoot: filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), AppName),
	}
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fallback)
	}
	return filepath.Join(home, fallback)
}

// WithStateRoot returns a copy of p rooted at stateRoot. An empty
// stateRoot keeps the current one. Derived directories are filled in.
func (p *Paths) WithStateRoot(stateRoot string) *Paths {
	out := *p
	if stateRoot != "" {
		out.StateRoot = stateRoot
	}
	out.ProjectsDir = filepath.Join(out.StateRoot, "projects")
	out.LogsDir = filepath.Join(out.StateRoot, "logs")
	return &out
}

// ProviderProjectDir returns <state-root>/projects/<project>/<backend>.
// The joined path cannot leave the projects directory even when a name
// contains ".." or the tree contains symlinks.
func (p *Paths) ProviderProjectDir(project, backend string) (string, error) {
	if project == "" || backend == "" {
		return "", fmt.Errorf("project and backend names are required")
	}
	root := filepath.Join(p.StateRoot, "projects")
	dir, err := securejoin.SecureJoin(root, filepath.Join(project, backend))
	if err != nil {
		return "", fmt.Errorf("invalid project directory for %s/%s: %w", project, backend, err)
	}
	return dir, nil
}

// AuditLogPath returns the event log for an instance
func (p *Paths) AuditLogPath(instanceName string) (string, error) {
	return securejoin.SecureJoin(filepath.Join(p.StateRoot, "logs"), instanceName+".events.jsonl")
}

// ProjectState describes one provider project directory on disk
type ProjectState struct {
	Project string
	Backend string
	Dir     string
}

// ListProjectStates returns every provider project directory under the
// state root, sorted by project then backend.
func ListProjectStates(p *Paths) ([]*ProjectState, error) {
	root := filepath.Join(p.StateRoot, "projects")
	projects, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var states []*ProjectState
	for _, proj := range projects {
		if !proj.IsDir() {
			continue
		}
		backends, err := os.ReadDir(filepath.Join(root, proj.Name()))
		if err != nil {
			continue
		}
		for _, b := range backends {
			if !b.IsDir() {
				continue
			}
			states = append(states, &ProjectState{
				Project: proj.Name(),
				Backend: b.Name(),
				Dir:     filepath.Join(root, proj.Name(), b.Name()),
			})
		}
	}

	sort.Slice(states, func(i, j int) bool {
		if states[i].Project != states[j].Project {
			return states[i].Project < states[j].Project
		}
		return states[i].Backend < states[j].Backend
	})
	return states, nil
}
