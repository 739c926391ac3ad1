// Package hostsnaps discovers the snaps installed on the host so they can be
// injected into build instances without downloading them again.
package hostsnaps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"gopkg.in/yaml.v3"
)

// Default host locations used by snapd
const (
	DefaultMountDir = "/snap"
	DefaultSnapsDir = "/var/lib/snapd/snaps"
)

// ErrNotInstalled is returned when a snap is not installed on the host
var ErrNotInstalled = errors.New("snap not installed on host")

// Snap describes one installed host snap
type Snap struct {
	Name        string
	Revision    string
	Confinement string

	// SnapFile is the base name of the .snap file inside the inventory's SnapsDir
	SnapFile string

	// AssertionFile is the host path of the snap's assertions, empty when
	// the snap was installed without them (e.g. with --dangerous)
	AssertionFile string
}

// Classic reports whether the snap uses classic confinement
func (s *Snap) Classic() bool {
	return s.Confinement == "classic"
}

// Inventory resolves installed host snaps
type Inventory interface {
	// Lookup returns the installed snap, or an error wrapping ErrNotInstalled
	Lookup(name string) (*Snap, error)

	// SnapsDir is the host directory holding the .snap files
	SnapsDir() string
}

// DirInventory reads snapd's on-disk layout
type DirInventory struct {
	// MountDir holds one directory per snap with a "current" revision symlink
	MountDir string

	// Snaps holds <name>_<revision>.snap files
	Snaps string

	// AssertionsDir optionally holds <name>_<revision>.assert files
	AssertionsDir string
}

// NewDirInventory creates an inventory over snapd's default directories
func NewDirInventory() *DirInventory {
	return &DirInventory{
		MountDir: DefaultMountDir,
		Snaps:    DefaultSnapsDir,
	}
}

// SnapsDir returns the directory holding the .snap files
func (d *DirInventory) SnapsDir() string {
	return d.Snaps
}

type snapMeta struct {
	Name        string `yaml:"name"`
	Confinement string `yaml:"confinement"`
}

// Lookup resolves the current revision of an installed snap
func (d *DirInventory) Lookup(name string) (*Snap, error) {
	snapRoot, err := securejoin.SecureJoin(d.MountDir, name)
	if err != nil {
		return nil, fmt.Errorf("invalid snap name %q: %w", name, err)
	}

	revision, err := os.Readlink(filepath.Join(snapRoot, "current"))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current revision of %s: %w", name, err)
	}
	revision = filepath.Base(revision)

	snap := &Snap{
		Name:        name,
		Revision:    revision,
		Confinement: "strict",
		SnapFile:    fmt.Sprintf("%s_%s.snap", name, revision),
	}

	snapPath, err := securejoin.SecureJoin(d.Snaps, snap.SnapFile)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(snapPath); err != nil {
		return nil, fmt.Errorf("snap file for %s revision %s: %w", name, revision, err)
	}

	if meta, err := readMeta(filepath.Join(snapRoot, revision, "meta", "snap.yaml")); err == nil {
		if meta.Confinement != "" {
			snap.Confinement = meta.Confinement
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if d.AssertionsDir != "" {
		assertPath, err := securejoin.SecureJoin(d.AssertionsDir, fmt.Sprintf("%s_%s.assert", name, revision))
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(assertPath); err == nil {
			snap.AssertionFile = assertPath
		}
	}

	return snap, nil
}

func readMeta(path string) (*snapMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta snapMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &meta, nil
}

// MapInventory is a fixed, in-memory Inventory
type MapInventory struct {
	Dir   string
	Snaps map[string]*Snap
}

// NewMapInventory creates an inventory holding the given snaps
func NewMapInventory(dir string, snaps ...*Snap) *MapInventory {
	m := &MapInventory{Dir: dir, Snaps: make(map[string]*Snap)}
	for _, s := range snaps {
		m.Snaps[s.Name] = s
	}
	return m
}

// Lookup returns the registered snap
func (m *MapInventory) Lookup(name string) (*Snap, error) {
	if s, ok := m.Snaps[name]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
}

// SnapsDir returns the configured directory
func (m *MapInventory) SnapsDir() string {
	return m.Dir
}

var (
	_ Inventory = (*DirInventory)(nil)
	_ Inventory = (*MapInventory)(nil)
)
