// Package memdoc is a mutex-guarded, in-process docstore.Collection backed
// by a slice of documents. It round-trips each document through
// encoding/json so filter and sort paths see the same nested
// map[string]any/[]any shape a real document database would hand back.
package memdoc

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/nilsbenson/witsml-server/internal/docstore"
)

// Collection is an in-memory docstore.Collection. The zero value is not
// usable; construct with New.
type Collection struct {
	mu   sync.Mutex
	docs []docstore.Document
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{}
}

func normalize(doc docstore.Document) (docstore.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return docstore.Document(out), nil
}

func clone(doc docstore.Document) docstore.Document {
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (c *Collection) Insert(ctx context.Context, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	norm, err := normalize(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, norm)
	return nil
}

func (c *Collection) Replace(ctx context.Context, filter docstore.Filter, doc docstore.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	norm, err := normalize(doc)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for i, d := range c.docs {
		if docstore.Matches(d, filter) {
			c.docs[i] = norm
			count++
		}
	}
	return count, nil
}

func (c *Collection) Find(ctx context.Context, filter docstore.Filter, sortBy *docstore.Sort) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []docstore.Document
	for _, d := range c.docs {
		if docstore.Matches(d, filter) {
			out = append(out, clone(d))
		}
	}
	if sortBy != nil {
		sortByField(out, *sortBy)
	}
	return out, nil
}

func (c *Collection) Delete(ctx context.Context, filter docstore.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.docs[:0]
	removed := 0
	for _, d := range c.docs {
		if docstore.Matches(d, filter) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return removed, nil
}

func sortByField(docs []docstore.Document, s docstore.Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		vi, iOK := docstore.GetPath(docs[i], s.Field)
		vj, jOK := docstore.GetPath(docs[j], s.Field)
		if !iOK || !jOK {
			return iOK && !jOK
		}
		less := lessValue(vi, vj)
		if s.Ascending {
			return less
		}
		return lessValue(vj, vi)
	})
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		return false
	}
}
