package testutil

import (
	"embed"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/snapbox/internal/config"
	"github.com/firefly-engineering/snapbox/internal/project"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadHostConfigFixture decodes a TOML fixture over the default host config.
// It does not validate, so invalid fixtures can be loaded.
func LoadHostConfigFixture(name string) (*config.HostConfig, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	cfg := config.DefaultHostConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProjectFixture parses a snapcraft.yaml fixture for the host architecture.
func LoadProjectFixture(name string) (*project.Project, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return project.Parse(data, project.HostArch())
}

// ValidHostConfig returns the valid host config fixture.
func ValidHostConfig() (*config.HostConfig, error) {
	return LoadHostConfigFixture("host_config.toml")
}

// InvalidHostConfig returns the invalid host config fixture.
func InvalidHostConfig() (*config.HostConfig, error) {
	return LoadHostConfigFixture("invalid_host_config.toml")
}

// StrictProject returns the strictly confined core16 project fixture.
func StrictProject() (*project.Project, error) {
	return LoadProjectFixture("snapcraft_strict.yaml")
}

// ClassicProject returns the classic core18 project fixture.
func ClassicProject() (*project.Project, error) {
	return LoadProjectFixture("snapcraft_classic.yaml")
}
