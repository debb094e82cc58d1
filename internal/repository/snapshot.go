package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/compozy/repovault/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// SnapshotSchemaVersion defines the current schema version for
	// snapshot files.
	SnapshotSchemaVersion = "1.0.0"
	// SnapshotFilePermissions defines the permissions for snapshot files.
	SnapshotFilePermissions = 0600
	// SnapshotDirPermissions defines the permissions for the snapshot
	// directory.
	SnapshotDirPermissions = 0700
	// SnapshotLockTimeout defines the maximum time to wait for a lock.
	SnapshotLockTimeout = 30 * time.Second
	// SnapshotLockRetryInterval defines the interval between lock
	// retry attempts.
	SnapshotLockRetryInterval = 100 * time.Millisecond
)

// SnapshotRepository persists entity snapshots and the run manifest in
// a local directory. The wire format is one JSON file per entity with a
// metadata wrapper (schema version, checksum, timestamp).
type SnapshotRepository interface {
	WriteEntity(ctx context.Context, entity domain.EntityName, items any) error
	ReadEntity(ctx context.Context, entity domain.EntityName, out any) error
	EntityExists(entity domain.EntityName) (bool, error)
	WriteManifest(ctx context.Context, manifest *domain.Manifest) error
	ReadManifest(ctx context.Context) (*domain.Manifest, error)
	// MirrorPath returns the directory reserved for the git mirror.
	MirrorPath() string
}

// snapshotMetadata contains metadata about one snapshot file.
type snapshotMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	SavedAt       time.Time `json:"saved_at"`
}

// snapshotWrapper wraps the items with metadata.
type snapshotWrapper struct {
	Metadata snapshotMetadata `json:"metadata"`
	Items    json.RawMessage  `json:"items"`
}

// JSONSnapshotRepository implements SnapshotRepository using JSON file
// storage under a single directory.
type JSONSnapshotRepository struct {
	fs      afero.Fs
	dataDir string
	mu      sync.Mutex
}

// NewJSONSnapshotRepository creates a new JSON-based snapshot
// repository rooted at dataDir.
func NewJSONSnapshotRepository(fs afero.Fs, dataDir string) *JSONSnapshotRepository {
	if dataDir == "" {
		dataDir = "./backup"
	}
	return &JSONSnapshotRepository{fs: fs, dataDir: dataDir}
}

// WriteEntity persists one entity's items with locking and an atomic
// temp-file rename.
func (r *JSONSnapshotRepository) WriteEntity(ctx context.Context, entity domain.EntityName, items any) error {
	if err := r.ensureDataDir(); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s items: %w", entity, err)
	}
	wrapper := snapshotWrapper{
		Metadata: snapshotMetadata{
			SchemaVersion: SnapshotSchemaVersion,
			Checksum:      r.calculateChecksum(raw),
			SavedAt:       time.Now().UTC(),
		},
		Items: raw,
	}
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot wrapper: %w", err)
	}
	return r.writeLocked(ctx, r.entityFilename(entity), r.lockFilename(entity), data)
}

// ReadEntity loads one entity's items into out, validating schema
// version and checksum.
func (r *JSONSnapshotRepository) ReadEntity(ctx context.Context, entity domain.EntityName, out any) error {
	lock := flock.New(r.lockFilename(entity))
	lockCtx, cancel := context.WithTimeout(ctx, SnapshotLockTimeout)
	defer cancel()
	locked, err := r.acquireLock(lockCtx, lock.TryRLock)
	if err != nil {
		return fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire shared lock within timeout")
	}
	defer r.unlock(lock)
	data, err := afero.ReadFile(r.fs, r.entityFilename(entity))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no snapshot found for entity %s", entity)
		}
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var wrapper snapshotWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != SnapshotSchemaVersion {
		return fmt.Errorf("incompatible snapshot schema version: expected %s, got %s",
			SnapshotSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	// The checksum covers the compact form: the wrapper is written
	// indented, which re-indents the embedded raw items.
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, wrapper.Items); err != nil {
		return fmt.Errorf("failed to canonicalize snapshot items: %w", err)
	}
	if checksum := r.calculateChecksum(compacted.Bytes()); checksum != wrapper.Metadata.Checksum {
		return fmt.Errorf("snapshot checksum mismatch for %s: data may be corrupted", entity)
	}
	if err := json.Unmarshal(wrapper.Items, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s items: %w", entity, err)
	}
	return nil
}

// EntityExists checks whether a snapshot file exists for the entity.
func (r *JSONSnapshotRepository) EntityExists(entity domain.EntityName) (bool, error) {
	_, err := r.fs.Stat(r.entityFilename(entity))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check snapshot file: %w", err)
	}
	return true, nil
}

// WriteManifest persists the snapshot manifest.
func (r *JSONSnapshotRepository) WriteManifest(ctx context.Context, manifest *domain.Manifest) error {
	if err := r.ensureDataDir(); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return r.writeLocked(ctx, r.manifestFilename(), r.manifestFilename()+".lock", data)
}

// ReadManifest loads the snapshot manifest.
func (r *JSONSnapshotRepository) ReadManifest(_ context.Context) (*domain.Manifest, error) {
	data, err := afero.ReadFile(r.fs, r.manifestFilename())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewConfigurationError(
				"no manifest found in %s; is this a snapshot directory?", r.dataDir)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// MirrorPath returns the directory reserved for the git mirror.
func (r *JSONSnapshotRepository) MirrorPath() string {
	return filepath.Join(r.dataDir, "repository.git")
}

// writeLocked writes data to filename under an exclusive lock using an
// atomic temp-file rename.
func (r *JSONSnapshotRepository) writeLocked(ctx context.Context, filename, lockFile string, data []byte) error {
	lock := flock.New(lockFile)
	lockCtx, cancel := context.WithTimeout(ctx, SnapshotLockTimeout)
	defer cancel()
	locked, err := r.acquireLock(lockCtx, lock.TryLock)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock within timeout")
	}
	defer r.unlock(lock)
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, SnapshotFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			// Temp file cleanup is best effort.
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}

func (r *JSONSnapshotRepository) acquireLock(ctx context.Context, try func() (bool, error)) (bool, error) {
	ticker := time.NewTicker(SnapshotLockRetryInterval)
	defer ticker.Stop()
	for {
		locked, err := try()
		if err != nil {
			return false, err
		}
		if locked {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *JSONSnapshotRepository) unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", err)
	}
}

func (r *JSONSnapshotRepository) calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *JSONSnapshotRepository) ensureDataDir() error {
	return r.fs.MkdirAll(r.dataDir, SnapshotDirPermissions)
}

func (r *JSONSnapshotRepository) entityFilename(entity domain.EntityName) string {
	return filepath.Join(r.dataDir, fmt.Sprintf("%s.json", entity))
}

func (r *JSONSnapshotRepository) lockFilename(entity domain.EntityName) string {
	return filepath.Join(r.dataDir, fmt.Sprintf(".%s.lock", entity))
}

func (r *JSONSnapshotRepository) manifestFilename() string {
	return filepath.Join(r.dataDir, "manifest.json")
}
