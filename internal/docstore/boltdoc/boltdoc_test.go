package boltdoc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/nilsbenson/witsml-server/internal/docstore"
)

func openTestDB(t *testing.T) *bbolt.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.db")
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("bbolt.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndFindRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(openTestDB(t), "channelDataChunk")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := c.Insert(ctx, docstore.Document{"uri": "well/1/log/a", "start": 100.0}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := c.Find(ctx, docstore.Eq("uri", "well/1/log/a"), nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0]["start"] != 100.0 {
		t.Fatalf("expected one round-tripped document, got %+v", got)
	}
}

func TestReplaceAndDeletePersist(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c, err := Open(db, "channelDataChunk")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	c.Insert(ctx, docstore.Document{"uid": "chunk-1", "recordCount": 10.0})
	c.Insert(ctx, docstore.Document{"uid": "chunk-2", "recordCount": 5.0})

	n, err := c.Replace(ctx, docstore.Eq("uid", "chunk-1"), docstore.Document{"uid": "chunk-1", "recordCount": 30.0})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 replaced, got %d", n)
	}

	n, err = c.Delete(ctx, docstore.Eq("uid", "chunk-2"))
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}

	remaining, err := c.Find(ctx, docstore.And(), nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(remaining) != 1 || remaining[0]["recordCount"] != 30.0 {
		t.Fatalf("expected only the replaced chunk-1 to remain, got %+v", remaining)
	}
}

func TestFindSortsByField(t *testing.T) {
	ctx := context.Background()
	c, err := Open(openTestDB(t), "channelDataChunk")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, start := range []float64{300, 100, 200} {
		c.Insert(ctx, docstore.Document{"start": start})
	}

	got, err := c.Find(ctx, docstore.And(), &docstore.Sort{Field: "start", Ascending: true})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []float64{100, 200, 300}
	for i, w := range want {
		if got[i]["start"] != w {
			t.Fatalf("sorted[%d] = %v, want %v", i, got[i]["start"], w)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if _, err := Open(db, "channelDataChunk"); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := Open(db, "channelDataChunk"); err != nil {
		t.Fatalf("second Open should reuse the existing bucket: %v", err)
	}
}
