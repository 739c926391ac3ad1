// Package project loads the snapcraft project metadata a build needs.
// The metadata is read-only input: name, target architecture, optional
// version, snap base and confinement.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/snapbox/internal/errors"
)

// Supported snap bases
const (
	BaseCore16 = "core16"
	BaseCore18 = "core18"

	// DefaultBase is used by legacy projects that declare no base
	DefaultBase = BaseCore16
)

// Confinement modes
const (
	ConfinementStrict  = "strict"
	ConfinementDevmode = "devmode"
	ConfinementClassic = "classic"
)

// snapcraftFiles lists project file locations in lookup order
var snapcraftFiles = []string{
	filepath.Join("snap", "snapcraft.yaml"),
	"snapcraft.yaml",
	".snapcraft.yaml",
}

// snapNameRegex follows snapd's rules: lowercase letters, digits and
// hyphens, at least one letter, no leading, trailing or double hyphen.
var snapNameRegex = regexp.MustCompile(`^(?:[a-z0-9]+-?)*[a-z](?:-?[a-z0-9])*$`)

// debArches maps GOARCH values to Debian architecture tags
var debArches = map[string]string{
	"amd64":   "amd64",
	"386":     "i386",
	"arm":     "armhf",
	"arm64":   "arm64",
	"ppc64le": "ppc64el",
	"s390x":   "s390x",
}

// Project is the metadata of one snapcraft project
type Project struct {
	Name        string
	Version     string // empty when the project declares none
	Arch        string // Debian architecture tag, e.g. amd64
	Base        string
	Confinement string

	// Dir is the project directory on the host (empty when built in memory)
	Dir string
}

// HostArch returns the Debian architecture tag of the host
func HostArch() string {
	return DebArch(runtime.GOARCH)
}

// DebArch maps a GOARCH value to its Debian architecture tag.
// Unknown values are returned unchanged.
func DebArch(goarch string) string {
	if arch, ok := debArches[goarch]; ok {
		return arch
	}
	return goarch
}

// Classic reports whether the project uses classic confinement
func (p *Project) Classic() bool {
	return p.Confinement == ConfinementClassic
}

// Validate checks that the metadata is complete and supported
func (p *Project) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.Arch == "" {
		return errors.ProjectError("project architecture is required", nil)
	}
	switch p.Base {
	case BaseCore16, BaseCore18:
	default:
		return errors.ProjectError(fmt.Sprintf("unsupported base %q (supported: %s, %s)", p.Base, BaseCore16, BaseCore18), nil)
	}
	switch p.Confinement {
	case ConfinementStrict, ConfinementDevmode, ConfinementClassic:
	default:
		return errors.ProjectError(fmt.Sprintf("unsupported confinement %q", p.Confinement), nil)
	}
	return nil
}

// ValidateName checks a snap name
func ValidateName(name string) error {
	if name == "" {
		return errors.ProjectError("project name is required", nil)
	}
	if len(name) > 40 {
		return errors.ProjectError(fmt.Sprintf("project name %q is longer than 40 characters", name), nil)
	}
	if !snapNameRegex.MatchString(name) {
		return errors.ProjectError(fmt.Sprintf("invalid project name %q: use lowercase letters, digits and single hyphens", name), nil)
	}
	return nil
}

// snapcraftYAML holds the fields of snapcraft.yaml the provider needs.
// Version is a node so that 1.10 stays "1.10" instead of becoming 1.1.
type snapcraftYAML struct {
	Name        string    `yaml:"name"`
	Version     yaml.Node `yaml:"version"`
	Base        string    `yaml:"base"`
	Confinement string    `yaml:"confinement"`
}

// Find returns the path of the project file in dir
func Find(dir string) (string, error) {
	for _, rel := range snapcraftFiles {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.ProjectError(fmt.Sprintf("no snapcraft.yaml found in %s", dir), nil)
}

// Load reads and validates the project in dir. An empty arch builds for the host.
func Load(dir, arch string) (*Project, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ProjectError("failed to read project file", err)
	}

	p, err := Parse(data, arch)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.ProjectError("failed to resolve project directory", err)
	}
	p.Dir = abs

	return p, nil
}

// Parse decodes snapcraft.yaml content
func Parse(data []byte, arch string) (*Project, error) {
	var raw snapcraftYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ProjectError("failed to parse snapcraft.yaml", err)
	}

	p := &Project{
		Name:        raw.Name,
		Version:     raw.Version.Value,
		Arch:        arch,
		Base:        raw.Base,
		Confinement: raw.Confinement,
	}
	if raw.Version.Kind != 0 && raw.Version.Kind != yaml.ScalarNode {
		return nil, errors.ProjectError("version must be a string", nil)
	}
	if p.Arch == "" {
		p.Arch = HostArch()
	}
	if p.Base == "" {
		p.Base = DefaultBase
	}
	if p.Confinement == "" {
		p.Confinement = ConfinementStrict
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
