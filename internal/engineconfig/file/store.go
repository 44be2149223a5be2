// Package file provides a file-based engineconfig.Store implementation.
//
// Configuration is persisted as a versioned JSON envelope:
//
//	{"version": 1, "config": { ... }}
//
// Save loads nothing first; it atomically overwrites the entire file via a
// temp file plus rename, with round-trip validation before the rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nilsbenson/witsml-server/internal/engineconfig"
)

const currentVersion = 1

type envelope struct {
	Version int                  `json:"version"`
	Config  engineconfig.Config `json:"config"`
}

// Store is a file-based engineconfig.Store.
type Store struct {
	path string
}

var _ engineconfig.Store = (*Store)(nil)

// NewStore creates a Store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the configuration from disk. Returns the zero Config if the
// file does not exist.
func (s *Store) Load(ctx context.Context) (engineconfig.Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return engineconfig.Config{}, nil
		}
		return engineconfig.Config{}, fmt.Errorf("read engine config file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return engineconfig.Config{}, fmt.Errorf("parse engine config file: %w", err)
	}
	if env.Version > currentVersion {
		return engineconfig.Config{}, fmt.Errorf("engine config file version %d is newer than supported version %d", env.Version, currentVersion)
	}
	return env.Config, nil
}

// Save atomically writes cfg to disk.
func (s *Store) Save(ctx context.Context, cfg engineconfig.Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create engine config directory: %w", err)
	}

	env := envelope{Version: currentVersion, Config: cfg}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal engine config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	check, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("read-back temp file: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename engine config file: %w", err)
	}
	return nil
}
