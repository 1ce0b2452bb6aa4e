// Package fs implements the Storage Adapter capability set over the local
// filesystem, for development and integration testing without a live
// object-store credential.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/storage"
)

// Config holds configuration for the filesystem storage adapter.
type Config struct {
	// RootDir is the directory under which objects are written, mirroring
	// the object-store key layout as a relative path.
	RootDir string
}

// Store is a filesystem-backed implementation of storage.Adapter. Every
// write is local and succeeds or fails atomically with the OS call, so
// there is no transient/permanent distinction worth making: any error is
// permanent.
type Store struct {
	root string
}

// New creates a new filesystem adapter rooted at cfg.RootDir.
func New(cfg Config) (*Store, error) {
	if cfg.RootDir == "" {
		return nil, storage.ErrNotConfigured
	}
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: cfg.RootDir}, nil
}

// Name identifies the adapter for logging and metrics.
func (s *Store) Name() string { return "fs" }

func (s *Store) writeFile(key string, body []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

// Save writes the three canonical objects for a crash per §4.4.
func (s *Store) Save(_ context.Context, report *crashreport.Report) storage.Outcome {
	rawKey, idxKey := storage.ObjectKeys(report.ID)

	annotationsJSON, err := json.Marshal(report.Annotations)
	if err != nil {
		return storage.PermanentError
	}
	if err := s.writeFile(rawKey, annotationsJSON); err != nil {
		return storage.PermanentError
	}

	index := make(map[string]*string, len(report.Dumps))
	for name := range report.Dumps {
		if fn, ok := report.OriginalFilenames[name]; ok && fn != "" {
			v := fn
			index[name] = &v
		} else {
			index[name] = nil
		}
	}
	indexJSON, err := json.Marshal(index)
	if err != nil {
		return storage.PermanentError
	}
	if err := s.writeFile(idxKey, indexJSON); err != nil {
		return storage.PermanentError
	}

	for name, data := range report.Dumps {
		key := storage.DumpKey(report.ID, name)
		if err := s.writeFile(key, data); err != nil {
			return storage.PermanentError
		}
	}

	return storage.OK
}

// Verify proves write capability by writing and removing a probe file.
func (s *Store) Verify(_ context.Context) error {
	path := filepath.Join(s.root, "verify-probe")
	if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(path)
}

var _ storage.Adapter = (*Store)(nil)
