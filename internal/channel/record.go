// Package channel implements the channel-data record model: an ordered,
// forward-only stream of multi-channel rows keyed by a primary index, the
// storage chunk that holds fixed-extent windows of those rows, and the
// log-shape capability surface that lets the log adapter drive the engine
// without a version-specific inheritance hierarchy.
package channel

import (
	"errors"

	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

// ErrNoMoreRecords is returned by Reader.Next when the stream is exhausted.
var ErrNoMoreRecords = errors.New("no more records")

// Value is one channel's value in a record, or its null sentinel.
type Value struct {
	Text string
	Null bool
}

// NullValue constructs a null Value; Text is ignored by callers but kept so
// round-tripping through the null sentinel string is lossless.
func NullValue(sentinel string) Value { return Value{Text: sentinel, Null: true} }

// DataValue constructs a non-null Value.
func DataValue(text string) Value { return Value{Text: text} }

// Record is one row: a primary index value plus an ordered list of channel
// columns (excluding the primary index itself). ChunkID, when non-empty,
// names the chunk this record currently lives in — the chunker and merger
// use it to decide whether an output chunk is a fresh insert or an update
// to an existing stored chunk. Equality between records is defined solely
// on Index.
type Record struct {
	Index   float64
	Columns []Value
	ChunkID string
}

// Equal reports whether two records share the same primary index value.
func (r Record) Equal(other Record) bool { return r.Index == other.Index }

// HasValues reports whether any column holds a non-null value.
func (r Record) HasValues() bool {
	for _, v := range r.Columns {
		if !v.Null {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record; Columns gets its own backing array.
func (r Record) Clone() Record {
	cols := make([]Value, len(r.Columns))
	copy(cols, r.Columns)
	return Record{Index: r.Index, Columns: cols, ChunkID: r.ChunkID}
}

// WithColumn returns a copy of r with column i replaced by v.
func (r Record) WithColumn(i int, v Value) Record {
	cp := r.Clone()
	cp.Columns[i] = v
	return cp
}

// comparable alias used by range arithmetic over indices.
type indexRange = rangeidx.Range[float64]
