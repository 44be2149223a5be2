// Package memory provides an in-memory engineconfig.Store implementation.
// Intended for testing. Configuration is not persisted across restarts.
package memory

import (
	"context"
	"sync"

	"github.com/nilsbenson/witsml-server/internal/engineconfig"
)

// Store is an in-memory engineconfig.Store.
type Store struct {
	mu  sync.RWMutex
	cfg engineconfig.Config
	set bool
}

var _ engineconfig.Store = (*Store)(nil)

// NewStore creates a new in-memory Store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the stored configuration, or the zero Config if Save has
// never been called.
func (s *Store) Load(ctx context.Context) (engineconfig.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return engineconfig.Config{}, nil
	}
	return s.cfg, nil
}

// Save persists cfg.
func (s *Store) Save(ctx context.Context, cfg engineconfig.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.set = true
	return nil
}
