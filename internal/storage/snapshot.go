package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/worktally/pkg/models"
	"gopkg.in/yaml.v3"
)

// SnapshotStore reads and writes a workspace snapshot as a YAML file. It is
// used to seed the in-memory workspace at start-up and to export it; the
// workspace itself never writes through it on mutation.
type SnapshotStore interface {
	Load() (models.Snapshot, error)
	Save(snap models.Snapshot) error
	Path() string
}

type fileSnapshotStore struct {
	path string
}

// NewSnapshotStore creates a SnapshotStore backed by the YAML file at path.
func NewSnapshotStore(path string) SnapshotStore {
	return &fileSnapshotStore{path: path}
}

func (s *fileSnapshotStore) Path() string {
	return s.path
}

// Load parses the snapshot file. A missing file yields an empty snapshot so a
// fresh workspace starts without one.
func (s *fileSnapshotStore) Load() (models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Snapshot{Version: models.SnapshotVersion}, nil
		}
		return models.Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("loading snapshot: parsing YAML: %w", err)
	}
	switch snap.Version {
	case "":
		snap.Version = models.SnapshotVersion
	case models.SnapshotVersion:
	default:
		return models.Snapshot{}, fmt.Errorf("loading snapshot: unsupported version %q", snap.Version)
	}
	return snap, nil
}

// Save writes the snapshot, creating the parent directory if needed. The file
// is written to a temporary sibling first and renamed into place while an
// exclusive lock on the sidecar lock file is held.
func (s *fileSnapshotStore) Save(snap models.Snapshot) error {
	if snap.Version == "" {
		snap.Version = models.SnapshotVersion
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("saving snapshot: creating directory: %w", err)
	}
	unlock, err := lockPath(s.path)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	defer func() { _ = unlock() }()
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("saving snapshot: marshaling YAML: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("saving snapshot: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving snapshot: writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving snapshot: closing file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving snapshot: renaming file: %w", err)
	}
	return nil
}
