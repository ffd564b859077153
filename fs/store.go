// Package fs persists the built registry as a versioned envelope file under
// the user cache directory.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/portdex/portdex"
)

// SchemaVersion is the envelope format version this build reads and writes.
// A persisted envelope with any other version is treated as a cache miss.
const SchemaVersion = 1

// envelope is the serialized cache file layout. The registry's derived
// indexes are not stored; they are rebuilt deterministically on load, which
// keeps save/load cycles bit-identical.
type envelope struct {
	SchemaVersion     int                       `json:"schemaVersion"`
	BuiltAt           time.Time                 `json:"builtAt"`
	SourceFingerprint string                    `json:"sourceFingerprint"`
	Assignments       []*portdex.PortAssignment `json:"assignments"`
}

// Ensure Store implements portdex.CacheStore at compile time.
var _ portdex.CacheStore = (*Store)(nil)

// Store reads and writes the registry envelope at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the given envelope path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the envelope file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the envelope and rebuilds the registry. Every failure mode —
// missing file, unreadable file, corrupt JSON, schema version mismatch —
// returns ENOTFOUND so callers treat it as a miss, never a fatal error.
func (s *Store) Load(ctx context.Context) (*portdex.PortRegistry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "cache not readable at %s: %v", s.path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "cache corrupt at %s: %v", s.path, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "cache schema version %d does not match expected %d", env.SchemaVersion, SchemaVersion)
	}

	return portdex.BuildRegistry(env.Assignments, env.SourceFingerprint, env.BuiltAt), nil
}

// Save writes the registry envelope atomically: the content goes to a
// temporary file in the same directory and is renamed into place, so a
// concurrent reader never observes a half-written cache.
func (s *Store) Save(ctx context.Context, registry *portdex.PortRegistry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := envelope{
		SchemaVersion:     SchemaVersion,
		BuiltAt:           registry.BuiltAt(),
		SourceFingerprint: registry.SourceFingerprint(),
		Assignments:       registry.Assignments(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return portdex.Errorf(portdex.EINTERNAL, "cache encoding failed: %v", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return portdex.Errorf(portdex.EINTERNAL, "cache directory %s: %v", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return portdex.Errorf(portdex.EINTERNAL, "cache temp file: %v", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return portdex.Errorf(portdex.EINTERNAL, "cache write: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return portdex.Errorf(portdex.EINTERNAL, "cache close: %v", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return portdex.Errorf(portdex.EINTERNAL, "cache chmod: %v", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return portdex.Errorf(portdex.EINTERNAL, "cache rename: %v", err)
	}

	return nil
}
