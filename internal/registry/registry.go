// Package registry records which snaps have been injected into an instance.
//
// The registry is a YAML file kept in the provider project directory. Each
// snap maps to an ordered history of injections; only the latest entry
// decides whether a snap needs to be injected again. An entry is stale when
// the host now has a different revision, or when it was written for another
// instance (the instance was destroyed and recreated since).
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the registry file name inside a provider project directory
const FileName = "snap-registry.yaml"

// maxHistory bounds the records kept per snap
const maxHistory = 10

// Record is one injection of a snap into an instance
type Record struct {
	Revision   string    `yaml:"revision"`
	InstanceID string    `yaml:"instance-id"`
	InjectedAt time.Time `yaml:"injected-at"`
}

// Registry is the in-memory view of a registry file
type Registry struct {
	path  string
	snaps map[string][]Record
}

// New returns an empty registry that will be saved to path
func New(path string) *Registry {
	return &Registry{path: path, snaps: make(map[string][]Record)}
}

// Load reads the registry at path. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	r := New(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	if err := yaml.Unmarshal(data, &r.snaps); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	if r.snaps == nil {
		r.snaps = make(map[string][]Record)
	}

	return r, nil
}

// Path returns the file the registry is saved to
func (r *Registry) Path() string {
	return r.path
}

// Latest returns the most recent record for a snap
func (r *Registry) Latest(name string) (Record, bool) {
	records := r.snaps[name]
	if len(records) == 0 {
		return Record{}, false
	}
	return records[len(records)-1], true
}

// IsFresh reports whether the snap was last injected at revision into
// the instance identified by instanceID.
func (r *Registry) IsFresh(name, revision, instanceID string) bool {
	latest, ok := r.Latest(name)
	if !ok {
		return false
	}
	return latest.Revision == revision && latest.InstanceID == instanceID
}

// Record appends an injection record for a snap
func (r *Registry) Record(name string, rec Record) {
	if rec.InjectedAt.IsZero() {
		rec.InjectedAt = time.Now().UTC()
	}
	records := append(r.snaps[name], rec)
	if len(records) > maxHistory {
		records = records[len(records)-maxHistory:]
	}
	r.snaps[name] = records
}

// History returns all records kept for a snap, oldest first
func (r *Registry) History(name string) []Record {
	records := make([]Record, len(r.snaps[name]))
	copy(records, r.snaps[name])
	return records
}

// Names returns the registered snap names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.snaps))
	for name := range r.snaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the registry atomically, creating its directory if needed
func (r *Registry) Save() error {
	data, err := yaml.Marshal(r.snaps)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+FileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}
