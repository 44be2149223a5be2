// Package engine is the construction graph for the channel-data storage
// engine: it wires a configuration store, the chunk and transaction-log
// collections, and hands out a logadapter.Adapter per log object, the way
// cmd/gastrolog/main.go wires its orchestrator and store factories by hand
// in one place instead of through a DI container.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/chunkstore"
	"github.com/nilsbenson/witsml-server/internal/dbtxn"
	"github.com/nilsbenson/witsml-server/internal/docstore"
	"github.com/nilsbenson/witsml-server/internal/engineconfig"
	"github.com/nilsbenson/witsml-server/internal/logadapter"
	"github.com/nilsbenson/witsml-server/internal/logging"
)

// TransactionLogCollection is the name transactions are recorded under.
const TransactionLogCollection = "dbTransaction"

// Engine holds the channel engine's tuning configuration and the
// collaborators every logadapter.Adapter it hands out shares.
type Engine struct {
	cfgStore engineconfig.Store
	cfg      engineconfig.Config
	chunks   *chunkstore.Store
	txns     *dbtxn.Factory
	logger   *slog.Logger
}

// New loads the engine configuration from cfgStore (bootstrapping the
// default configuration if none has ever been saved) and wires an Engine
// over chunkColl (the "channelDataChunk" collection) and txnLog (the
// "dbTransaction" collection).
func New(ctx context.Context, cfgStore engineconfig.Store, chunkColl, txnLog docstore.Collection, logger *slog.Logger) (*Engine, error) {
	logger = logging.Default(logger)

	cfg, err := cfgStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}
	if (cfg == engineconfig.Config{}) {
		cfg = engineconfig.Default()
		if err := cfgStore.Save(ctx, cfg); err != nil {
			return nil, fmt.Errorf("bootstrap engine config: %w", err)
		}
	}

	return &Engine{
		cfgStore: cfgStore,
		cfg:      cfg,
		chunks:   chunkstore.New(chunkColl),
		txns:     dbtxn.NewFactory(txnLog, logger),
		logger:   logger.With("component", "engine"),
	}, nil
}

// Config returns the engine's currently effective configuration.
func (e *Engine) Config() engineconfig.Config { return e.cfg }

// Reconfigure persists cfg and makes it effective for every Adapter
// constructed after this call returns; Adapters already handed out keep
// the configuration they were built with.
func (e *Engine) Reconfigure(ctx context.Context, cfg engineconfig.Config) error {
	if err := e.cfgStore.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save engine config: %w", err)
	}
	e.cfg = cfg
	return nil
}

// NewTransaction begins a transaction against the engine's transaction log.
func (e *Engine) NewTransaction() *dbtxn.Transaction { return e.txns.New() }

// LogAdapter returns the channel-data facade for one log object.
func (e *Engine) LogAdapter(shape channel.LogShape) *logadapter.Adapter {
	return logadapter.New(shape, e.chunks, e.cfg, e.logger)
}
