package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/nilsbenson/witsml-server/internal/chunkstore"
	enginefile "github.com/nilsbenson/witsml-server/internal/engineconfig/file"
	enginemem "github.com/nilsbenson/witsml-server/internal/engineconfig/memory"
	"github.com/nilsbenson/witsml-server/internal/docstore/boltdoc"
	"github.com/nilsbenson/witsml-server/internal/docstore/memdoc"
)

// OpenMemory wires an Engine entirely in-process, with no durability across
// restarts. Intended for tests.
func OpenMemory(ctx context.Context, logger *slog.Logger) (*Engine, error) {
	return New(ctx, enginemem.NewStore(), memdoc.New(), memdoc.New(), logger)
}

// boltEngine bundles an Engine with the bbolt handle backing it, so callers
// can close the database on shutdown.
type boltEngine struct {
	*Engine
	db *bbolt.DB
}

// Close releases the underlying bbolt database.
func (b *boltEngine) Close() error { return b.db.Close() }

// OpenBolt wires an Engine backed by a bbolt database under dir: the engine
// configuration is a JSON file alongside it (engineconfig/file.Store), and
// the chunk/transaction collections are bbolt buckets in the same database,
// all under one home directory.
func OpenBolt(ctx context.Context, dir string, logger *slog.Logger) (*boltEngine, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create engine home directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, "witsml.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt database: %w", err)
	}

	chunkColl, err := boltdoc.Open(db, chunkstore.CollectionName())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open chunk collection: %w", err)
	}
	txnColl, err := boltdoc.Open(db, TransactionLogCollection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open transaction log collection: %w", err)
	}

	cfgStore := enginefile.NewStore(filepath.Join(dir, "engine-config.json"))

	eng, err := New(ctx, cfgStore, chunkColl, txnColl, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltEngine{Engine: eng, db: db}, nil
}
