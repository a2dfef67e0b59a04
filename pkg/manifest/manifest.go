// Package manifest tracks the analysis report snapshots taken of a header
// tree so that successive runs can be compared.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshot is one recorded analysis report.
type Snapshot struct {
	Name    string    `yaml:"name" json:"name"`
	Version string    `yaml:"version" json:"version"`
	File    string    `yaml:"file" json:"file"`
	Format  string    `yaml:"format,omitempty" json:"format,omitempty"`
	RunID   string    `yaml:"run_id" json:"run_id"`
	TakenAt time.Time `yaml:"taken_at" json:"taken_at"`
	Classes int       `yaml:"classes" json:"classes"`
}

// NewSnapshot stamps a snapshot with a fresh run id.
func NewSnapshot(name, version, file string) Snapshot {
	return Snapshot{
		Name:    name,
		Version: version,
		File:    file,
		RunID:   uuid.NewString(),
		TakenAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Manifest tracks the snapshots of one header tree and which two of them
// are compared by default.
type Manifest struct {
	CurrentVersion  string     `yaml:"current_version" json:"current_version"`
	PreviousVersion string     `yaml:"previous_version" json:"previous_version"`
	Snapshots       []Snapshot `yaml:"snapshots" json:"snapshots"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// AddSnapshot records s as the current snapshot. Re-recording a version
// replaces its entry and keeps the previous pointer where it was.
func (m *Manifest) AddSnapshot(s Snapshot) {
	if m.CurrentVersion != "" && m.CurrentVersion != s.Version {
		m.PreviousVersion = m.CurrentVersion
	}
	m.CurrentVersion = s.Version

	for i := range m.Snapshots {
		if m.Snapshots[i].Name == s.Name && m.Snapshots[i].Version == s.Version {
			m.Snapshots[i] = s
			return
		}
	}

	m.Snapshots = append(m.Snapshots, s)
}

// Snapshot returns the entry recorded for version.
func (m *Manifest) Snapshot(version string) (Snapshot, bool) {
	for _, s := range m.Snapshots {
		if s.Version == version {
			return s, true
		}
	}
	return Snapshot{}, false
}

// SnapshotFile returns the path associated with the provided version, if present.
func (m *Manifest) SnapshotFile(version string) string {
	s, _ := m.Snapshot(version)
	return s.File
}
