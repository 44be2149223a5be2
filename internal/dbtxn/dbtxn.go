// Package dbtxn implements the single-node transaction contract the
// channel engine's mutating operations are built on: each action is
// attached before the chunk store applies it, and Save durably records the
// whole batch once its writes are done.
//
// It is a single-node command log: there is no consensus round here, only
// a durable record of the actions a batch performed.
package dbtxn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nilsbenson/witsml-server/internal/docstore"
	"github.com/nilsbenson/witsml-server/internal/logging"
	"github.com/nilsbenson/witsml-server/internal/witsmlerr"
)

// Kind identifies the action a transaction entry records.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// ErrAlreadySaved is returned by Attach once Save has been called.
var ErrAlreadySaved = errors.New("transaction already saved")

// Entry is one attached action.
type Entry struct {
	Action Kind
	URI    string
	Doc    any
}

// Transaction accumulates entries and, on Save, records them as a single
// document in a dbTransaction collection.
type Transaction struct {
	id      uuid.UUID
	log     docstore.Collection
	logger  *slog.Logger
	entries []Entry
	saved   bool
}

// Factory constructs transactions against a fixed dbTransaction
// collection.
type Factory struct {
	log    docstore.Collection
	logger *slog.Logger
}

// NewFactory returns a Factory that records transactions into log.
func NewFactory(log docstore.Collection, logger *slog.Logger) *Factory {
	logger = logging.Default(logger)
	return &Factory{log: log, logger: logger.With("component", "dbtxn")}
}

// New begins a new transaction.
func (f *Factory) New() *Transaction {
	return &Transaction{id: uuid.New(), log: f.log, logger: f.logger}
}

// ID returns the transaction's identifier.
func (t *Transaction) ID() uuid.UUID { return t.id }

// Attach records a pending action. It returns ErrAlreadySaved once Save
// has completed.
func (t *Transaction) Attach(action Kind, uri string, doc any) error {
	if t.saved {
		return ErrAlreadySaved
	}
	t.entries = append(t.entries, Entry{Action: action, URI: uri, Doc: doc})
	return nil
}

// Save durably records every attached entry as a single document. It does
// not apply them: the chunk store performs each write right after attaching
// it, and the log adapter calls Save once the batch's writes are done.
func (t *Transaction) Save(ctx context.Context) error {
	if t.saved {
		return ErrAlreadySaved
	}

	entries := make([]map[string]any, len(t.entries))
	for i, e := range t.entries {
		entries[i] = map[string]any{
			"action": string(e.Action),
			"uri":    e.URI,
			"doc":    e.Doc,
		}
	}

	doc := docstore.Document{
		"id":      t.id.String(),
		"entries": entries,
		"savedAt": time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := t.log.Insert(ctx, doc); err != nil {
		return witsmlerr.WriteError(fmt.Errorf("record transaction %s: %w", t.id, err))
	}
	t.saved = true
	t.logger.Debug("transaction recorded", "id", t.id, "entries", len(t.entries))
	return nil
}

// Entries returns the attached entries in attach order.
func (t *Transaction) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}
