package manifest_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/pkg/manifest"
)

func TestLoadMissing(t *testing.T) {
	m, err := manifest.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Empty(t, m.Snapshots)
	require.Empty(t, m.CurrentVersion)
}

func TestAddSnapshotMovesPointers(t *testing.T) {
	m := &manifest.Manifest{}
	m.AddSnapshot(manifest.NewSnapshot("opencv", "4.9", "a.yaml"))
	require.Equal(t, "4.9", m.CurrentVersion)
	require.Empty(t, m.PreviousVersion)

	m.AddSnapshot(manifest.NewSnapshot("opencv", "4.10", "b.yaml"))
	require.Equal(t, "4.10", m.CurrentVersion)
	require.Equal(t, "4.9", m.PreviousVersion)

	// same version again replaces the entry only
	again := manifest.NewSnapshot("opencv", "4.10", "c.yaml")
	m.AddSnapshot(again)
	require.Equal(t, "4.9", m.PreviousVersion)
	require.Len(t, m.Snapshots, 2)
	require.Equal(t, "c.yaml", m.SnapshotFile("4.10"))

	s, ok := m.Snapshot("4.10")
	require.True(t, ok)
	require.Equal(t, again.RunID, s.RunID)
	_, ok = m.Snapshot("5.0")
	require.False(t, ok)
	require.Empty(t, m.SnapshotFile("5.0"))
}

func TestNewSnapshotRunID(t *testing.T) {
	a := manifest.NewSnapshot("opencv", "4.9", "a.yaml")
	b := manifest.NewSnapshot("opencv", "4.9", "a.yaml")
	require.NotEqual(t, a.RunID, b.RunID)
	_, err := uuid.Parse(a.RunID)
	require.NoError(t, err)
	require.False(t, a.TakenAt.IsZero())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manifest.yaml")
	m := &manifest.Manifest{}
	s := manifest.NewSnapshot("opencv", "4.9", "a.yaml")
	s.Classes = 12
	s.Format = "yaml"
	m.AddSnapshot(s)
	require.NoError(t, m.Save(path))

	got, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, "4.9", got.CurrentVersion)
	require.Len(t, got.Snapshots, 1)
	require.Equal(t, s.RunID, got.Snapshots[0].RunID)
	require.Equal(t, 12, got.Snapshots[0].Classes)
	require.True(t, s.TakenAt.Equal(got.Snapshots[0].TakenAt))
}
