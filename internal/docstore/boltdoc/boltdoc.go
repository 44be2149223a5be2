// Package boltdoc is a docstore.Collection backed by a single go.etcd.io/bbolt
// bucket. bbolt has no query language, so Find and Delete scan the bucket
// and apply docstore.Matches/docstore.GetPath in Go — the same filter
// semantics memdoc uses, just running against durable storage.
package boltdoc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/nilsbenson/witsml-server/internal/docstore"
)

// Collection is a bbolt-backed docstore.Collection. Each document is
// stored as its JSON encoding under an 8-byte big-endian sequence key
// generated by bbolt's NextSequence.
type Collection struct {
	db     *bbolt.DB
	bucket []byte
}

// Open returns a Collection over bucket in db, creating the bucket if it
// does not already exist.
func Open(db *bbolt.DB, bucket string) (*Collection, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Collection{db: db, bucket: []byte(bucket)}, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (c *Collection) Insert(ctx context.Context, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(itob(seq), raw)
	})
}

func (c *Collection) Replace(ctx context.Context, filter docstore.Filter, doc docstore.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}

	count := 0
	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		return b.ForEach(func(k, v []byte) error {
			var d docstore.Document
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if docstore.Matches(d, filter) {
				count++
				return b.Put(k, raw)
			}
			return nil
		})
	})
	return count, err
}

func (c *Collection) Find(ctx context.Context, filter docstore.Filter, sortBy *docstore.Sort) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []docstore.Document
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		return b.ForEach(func(_, v []byte) error {
			var d docstore.Document
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if docstore.Matches(d, filter) {
				out = append(out, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
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

	var toDelete [][]byte
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		err := b.ForEach(func(k, v []byte) error {
			var d docstore.Document
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if docstore.Matches(d, filter) {
				key := append([]byte(nil), k...)
				toDelete = append(toDelete, key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return len(toDelete), err
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
