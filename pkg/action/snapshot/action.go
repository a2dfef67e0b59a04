// Package snapshot records analysis reports in a manifest and compares the
// two most recent ones.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/cxxbind/pkg/action/analyze"
	"github.com/cmmoran/cxxbind/pkg/manifest"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

// Generate writes an analysis report of the current headers and records it
// in the manifest as snapshotVersion.
func Generate(ctx context.Context, opts *parser.Options, manifestPath, snapshotName, snapshotVersion string) (manifest.Snapshot, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return manifest.Snapshot{}, err
	}

	r, outFile, err := analyze.Generate(ctx, opts)
	if err != nil {
		return manifest.Snapshot{}, err
	}

	s := manifest.NewSnapshot(snapshotName, snapshotVersion, outFile)
	s.Format = opts.Format
	if s.Format == "" {
		s.Format = parser.FormatFromFile(outFile)
	}
	s.Classes = r.Summary.Classes
	m.AddSnapshot(s)

	if err := m.Save(manifestPath); err != nil {
		return manifest.Snapshot{}, err
	}

	return s, nil
}

// List returns all snapshots recorded in the manifest.
func List(manifestPath string) (*manifest.Manifest, error) {
	return manifest.Load(manifestPath)
}

// DiffCurrentWithPrevious loads the manifest, locates the current and previous
// snapshot files, and returns a diff of their contents. Structured reports
// are compared as documents, so reordered keys do not show up.
func DiffCurrentWithPrevious(manifestPath string) (string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	if m.CurrentVersion == "" || m.PreviousVersion == "" {
		return "", fmt.Errorf("no current/previous snapshots recorded")
	}

	current, ok := m.Snapshot(m.CurrentVersion)
	if !ok || current.File == "" {
		return "", fmt.Errorf("snapshot files not found in manifest")
	}
	previous, ok := m.Snapshot(m.PreviousVersion)
	if !ok || previous.File == "" {
		return "", fmt.Errorf("snapshot files not found in manifest")
	}

	currentData, err := os.ReadFile(current.File)
	if err != nil {
		return "", fmt.Errorf("read current snapshot: %w", err)
	}

	previousData, err := os.ReadFile(previous.File)
	if err != nil {
		return "", fmt.Errorf("read previous snapshot: %w", err)
	}

	if structured(current) && structured(previous) {
		var prevDoc, curDoc any
		if err := yaml.Unmarshal(previousData, &prevDoc); err != nil {
			return "", fmt.Errorf("decode previous snapshot: %w", err)
		}
		if err := yaml.Unmarshal(currentData, &curDoc); err != nil {
			return "", fmt.Errorf("decode current snapshot: %w", err)
		}
		return cmp.Diff(prevDoc, curDoc), nil
	}

	return cmp.Diff(string(previousData), string(currentData)), nil
}

// structured reports a YAML or JSON snapshot. JSON documents are valid YAML.
func structured(s manifest.Snapshot) bool {
	format := s.Format
	if format == "" {
		format = parser.FormatFromFile(s.File)
	}
	return format == "yaml" || format == "json"
}
