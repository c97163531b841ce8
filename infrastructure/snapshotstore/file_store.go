// Package snapshotstore persists shared state snapshots as one YAML file per
// conversation thread.
package snapshotstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/ports"
	"gopkg.in/yaml.v3"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	dir      string      // Directory holding one file per thread
	dirPerm  os.FileMode // Permission for the created directory
	filePerm os.FileMode // Permission for snapshot files
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		dir:      filepath.Join(os.TempDir(), "resq", "snapshots"),
		dirPerm:  0o755,
		filePerm: 0o600, // snapshots may hold operational data
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithDir sets the directory snapshots are written to.
func WithDir(dir string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dir = dir
	}
}

// WithFilePermissions sets the permissions of snapshot files. Default is 0o600.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions of the snapshot directory. Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore provides file-based persistence for thread snapshots.
type FileStore struct {
	config fileStoreConfig
	mu     sync.Mutex
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) ports.SnapshotStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Save writes the snapshot, replacing any earlier one for the same thread.
// The file is replaced atomically so a concurrent Load never sees a partial write.
func (s *FileStore) Save(snapshot entities.Snapshot) error {
	if snapshot.ThreadID == "" {
		return fmt.Errorf("cannot persist a snapshot without a thread id")
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.config.dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.config.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), s.config.filePerm); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(snapshot.ThreadID)); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot saved for threadID, or (nil, nil) when there is none.
func (s *FileStore) Load(threadID string) (*entities.Snapshot, error) {
	if threadID == "" {
		return nil, nil
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path(threadID))
	s.mu.Unlock()
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot entities.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot for thread %q: %w", threadID, err)
	}
	return &snapshot, nil
}

// Location returns the snapshot directory.
func (s *FileStore) Location() string {
	return s.config.dir
}

// path maps a thread id to a file name; escaping keeps ids containing path
// separators inside the directory.
func (s *FileStore) path(threadID string) string {
	return filepath.Join(s.config.dir, url.PathEscape(threadID)+".yaml")
}
