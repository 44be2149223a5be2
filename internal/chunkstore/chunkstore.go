// Package chunkstore is the channel-engine-specific adapter over a
// "channelDataChunk" docstore.Collection: range-filtered fetch, bulk
// insert-or-update, and cascade delete by parent URI.
package chunkstore

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
	"github.com/nilsbenson/witsml-server/internal/dbtxn"
	"github.com/nilsbenson/witsml-server/internal/docstore"
	"github.com/nilsbenson/witsml-server/internal/witsmlerr"
)

// collectionName is the document-store collection chunks live in.
const collectionName = "channelDataChunk"

// Store is the chunk store for one document-store backend.
type Store struct {
	coll docstore.Collection
}

// New returns a Store over coll, which must be the "channelDataChunk"
// collection.
func New(coll docstore.Collection) *Store {
	return &Store{coll: coll}
}

// CollectionName returns the name the store's backing collection is
// expected to be opened under.
func CollectionName() string { return collectionName }

// FullRange spans the entire primary-index axis, for fetches that are not
// bounded to a sub-range (e.g. a cascade read before delete).
func FullRange(dir rangeidx.Direction) rangeidx.Range[float64] {
	return rangeidx.New(math.Inf(-1), math.Inf(1), dir)
}

// Fetch returns the chunks for uri whose [start,end] overlaps
// requestedRange: for an ascending log this selects chunks where end >=
// requestedRange.start and start <= requestedRange.end, mirrored for a
// descending log. The comparison is expressed against the
// storage-normalized rangeLo/rangeHi fields so it does not depend on
// which end of a chunk's traversal-order Start/End is numerically
// larger. Results are ordered by indices[0].start ascending or
// descending according to dir.
func (s *Store) Fetch(ctx context.Context, uri, primaryMnemonic string, requestedRange rangeidx.Range[float64], dir rangeidx.Direction) ([]channel.Chunk, error) {
	lo, hi := requestedRange.Sorted()
	filters := []docstore.Filter{
		docstore.EqFold("uri", uri),
		docstore.Gte("rangeHi", lo),
		docstore.Lte("rangeLo", hi),
	}
	if primaryMnemonic != "" {
		filters = append(filters, docstore.Eq("primaryMnemonic", primaryMnemonic))
	}

	sort := &docstore.Sort{Field: "start", Ascending: dir == rangeidx.Increasing}
	docs, err := s.coll.Find(ctx, docstore.And(filters...), sort)
	if err != nil {
		return nil, witsmlerr.ReadError(err)
	}

	chunks := make([]channel.Chunk, len(docs))
	for i, doc := range docs {
		c, err := documentToChunk(doc)
		if err != nil {
			return nil, witsmlerr.ReadError(err)
		}
		chunks[i] = c
	}
	return chunks, nil
}

// BulkWrite persists outputs as chunks of uri: an output with no UID is
// inserted with a fresh id; one carrying an existing UID is updated in
// place by (uri, uid). indices is applied to every chunk; each chunk's
// mnemonic/unit/null-value lists are taken from its own ChunkInput.
func (s *Store) BulkWrite(ctx context.Context, uri string, indices []channel.IndexDescriptor, outputs []ChunkInput, txn *dbtxn.Transaction) ([]channel.Chunk, error) {
	written := make([]channel.Chunk, len(outputs))
	for i, in := range outputs {
		data, err := channel.EncodeRecords(in.Records, in.NullValueList)
		if err != nil {
			return nil, witsmlerr.WriteError(err)
		}

		c := channel.Chunk{
			UID:           in.UID,
			URI:           uri,
			Indices:       append([]channel.IndexDescriptor(nil), indices...),
			Start:         in.Start,
			End:           in.End,
			MnemonicList:  in.MnemonicList,
			UnitList:      in.UnitList,
			NullValueList: in.NullValueList,
			Data:          data,
			RecordCount:   len(in.Records),
		}

		if c.UID == "" {
			c.UID = newChunkID()
			doc := chunkToDocument(c)
			if txn != nil {
				if err := txn.Attach(dbtxn.KindInsert, uri, doc); err != nil {
					return nil, err
				}
			}
			if err := s.coll.Insert(ctx, doc); err != nil {
				return nil, witsmlerr.WriteError(err)
			}
		} else {
			doc := chunkToDocument(c)
			if txn != nil {
				if err := txn.Attach(dbtxn.KindUpdate, uri, doc); err != nil {
					return nil, err
				}
			}
			filter := docstore.And(docstore.EqFold("uri", uri), docstore.Eq("uid", c.UID))
			n, err := s.coll.Replace(ctx, filter, doc)
			if err != nil {
				return nil, witsmlerr.WriteError(err)
			}
			if n == 0 {
				if err := s.coll.Insert(ctx, doc); err != nil {
					return nil, witsmlerr.WriteError(err)
				}
			}
		}
		written[i] = c
	}
	return written, nil
}

// DeleteByUri cascade-deletes every chunk belonging to uri.
func (s *Store) DeleteByUri(ctx context.Context, uri string, txn *dbtxn.Transaction) error {
	if txn != nil {
		if err := txn.Attach(dbtxn.KindDelete, uri, nil); err != nil {
			return err
		}
	}
	if _, err := s.coll.Delete(ctx, docstore.EqFold("uri", uri)); err != nil {
		return witsmlerr.DeleteError(err)
	}
	return nil
}

// ChunkInput is what a chunker.Output becomes once the shared per-write
// attributes are attached; the store applies those to every chunk in one
// bulk-write call.
type ChunkInput struct {
	UID           string
	Start, End    float64
	Records       []channel.Record
	MnemonicList  []string
	UnitList      []string
	NullValueList []string
}

func chunkToDocument(c channel.Chunk) docstore.Document {
	indices := make([]map[string]any, len(c.Indices))
	for i, idx := range c.Indices {
		indices[i] = map[string]any{
			"mnemonic":       idx.Mnemonic,
			"unit":           idx.Unit,
			"direction":      int(idx.Direction),
			"isTimeIndex":    idx.IsTimeIndex,
			"timeZoneOffset": idx.TimeZoneOffset,
			"start":          c.Start,
			"end":            c.End,
		}
	}
	primary := ""
	if len(c.Indices) > 0 {
		primary = c.Indices[0].Mnemonic
	}
	rangeLo, rangeHi := c.Start, c.End
	if rangeLo > rangeHi {
		rangeLo, rangeHi = rangeHi, rangeLo
	}
	return docstore.Document{
		"uid":             c.UID,
		"uri":             c.URI,
		"primaryMnemonic": primary,
		"indices":         indices,
		"start":           c.Start,
		"end":             c.End,
		"rangeLo":         rangeLo,
		"rangeHi":         rangeHi,
		"mnemonicList":    channel.JoinCSV(c.MnemonicList),
		"unitList":        channel.JoinCSV(c.UnitList),
		"nullValueList":   channel.JoinCSV(c.NullValueList),
		"data":            string(c.Data),
		"recordCount":     c.RecordCount,
	}
}

func documentToChunk(doc docstore.Document) (channel.Chunk, error) {
	get := func(k string) string {
		s, _ := doc[k].(string)
		return s
	}
	getFloat := func(k string) float64 {
		f, _ := doc[k].(float64)
		return f
	}

	rawIndices, _ := doc["indices"].([]any)
	indices := make([]channel.IndexDescriptor, 0, len(rawIndices))
	for _, raw := range rawIndices {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		dirVal, _ := m["direction"].(float64)
		isTime, _ := m["isTimeIndex"].(bool)
		mnem, _ := m["mnemonic"].(string)
		unit, _ := m["unit"].(string)
		tzOffset, _ := m["timeZoneOffset"].(string)
		indices = append(indices, channel.IndexDescriptor{
			Mnemonic:       mnem,
			Unit:           unit,
			Direction:      rangeidx.Direction(int(dirVal)),
			IsTimeIndex:    isTime,
			TimeZoneOffset: tzOffset,
		})
	}

	recordCount := 0
	if f, ok := doc["recordCount"].(float64); ok {
		recordCount = int(f)
	}

	return channel.Chunk{
		UID:           get("uid"),
		URI:           get("uri"),
		Indices:       indices,
		Start:         getFloat("start"),
		End:           getFloat("end"),
		MnemonicList:  channel.SplitCSV(get("mnemonicList")),
		UnitList:      channel.SplitCSV(get("unitList")),
		NullValueList: channel.SplitCSV(get("nullValueList")),
		Data:          []byte(get("data")),
		RecordCount:   recordCount,
	}, nil
}

// newChunkID is a variable so tests can substitute a deterministic
// generator.
var newChunkID = func() string {
	return uuid.New().String()
}
