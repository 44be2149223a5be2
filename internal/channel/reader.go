package channel

import (
	"fmt"
	"slices"

	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

// Shape describes the channel layout a Reader carries: the primary index
// descriptor plus the ordered, parallel mnemonic/unit/null-value lists for
// the non-primary (channel) columns.
type Shape struct {
	PrimaryMnemonic string
	PrimaryUnit     string
	IsTimeIndex     bool
	Direction       rangeidx.Direction

	Mnemonics  []string
	Units      []string
	NullValues []string
}

// arity returns the channel column count, which every Record.Columns in a
// Reader built from this Shape must match.
func (s Shape) arity() int { return len(s.Mnemonics) }

func (s Shape) validate() error {
	if s.PrimaryMnemonic == "" {
		return fmt.Errorf("%w: empty primary mnemonic", errInvalidShape)
	}
	if len(s.Units) != len(s.Mnemonics) || len(s.NullValues) != len(s.Mnemonics) {
		return fmt.Errorf("%w: mnemonic/unit/null-value arity mismatch (%d/%d/%d)",
			errInvalidShape, len(s.Mnemonics), len(s.Units), len(s.NullValues))
	}
	return nil
}

// ColumnIndex returns the column position of mnemonic, or -1.
func (s Shape) ColumnIndex(mnemonic string) int {
	return slices.Index(s.Mnemonics, mnemonic)
}

var errInvalidShape = fmt.Errorf("invalid channel shape")

// Reader is an ordered, forward-only stream of Records sharing one Shape.
// It is backed by a materialized slice (the natural representation once a
// chunk's JSON payload has been decoded, or once an update reader has been
// constructed from caller input); Next walks it forward-only, matching the
// corpus's cursor style while the per-channel index ranges used by the
// merger are precomputed once at construction instead of being recomputed
// on every access.
type Reader struct {
	shape   Shape
	records []Record
	pos     int

	// chanRanges[i] is the primary-index sub-range over which Mnemonics[i]
	// carries at least one non-null value. Absent if the channel is never
	// present (all rows null or column missing).
	chanRanges []*indexRange
}

// NewReader builds a Reader over records, validating shape/record arity and
// precomputing each channel's observed index sub-range.
func NewReader(shape Shape, records []Record) (*Reader, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	arity := shape.arity()
	for i, rec := range records {
		if len(rec.Columns) != arity {
			return nil, fmt.Errorf("%w: record %d has %d columns, want %d", errInvalidShape, i, len(rec.Columns), arity)
		}
	}

	r := &Reader{shape: shape, records: records}
	r.chanRanges = make([]*indexRange, arity)
	for _, rec := range records {
		for ci, v := range rec.Columns {
			if v.Null {
				continue
			}
			cur := r.chanRanges[ci]
			if cur == nil {
				rg := rangeidx.New(rec.Index, rec.Index, shape.Direction)
				r.chanRanges[ci] = &rg
				continue
			}
			lo, hi := cur.Sorted()
			if rec.Index < lo {
				lo = rec.Index
			}
			if rec.Index > hi {
				hi = rec.Index
			}
			if shape.Direction == rangeidx.Increasing {
				cur.Start, cur.End = lo, hi
			} else {
				cur.Start, cur.End = hi, lo
			}
		}
	}
	return r, nil
}

// Next returns the next record, or ErrNoMoreRecords when the stream is exhausted.
func (r *Reader) Next() (Record, error) {
	if r.pos >= len(r.records) {
		return Record{}, ErrNoMoreRecords
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

// Peek returns the next record without advancing, and whether one exists.
func (r *Reader) Peek() (Record, bool) {
	if r.pos >= len(r.records) {
		return Record{}, false
	}
	return r.records[r.pos], true
}

// Reset rewinds the cursor to the first record.
func (r *Reader) Reset() { r.pos = 0 }

// Len returns the total number of records in the stream (not just remaining).
func (r *Reader) Len() int { return len(r.records) }

// Shape returns the reader's channel layout.
func (r *Reader) Shape() Shape { return r.shape }

// Direction returns the reader's primary-index direction.
func (r *Reader) Direction() rangeidx.Direction { return r.shape.Direction }

// IndexRange returns the [min,max] span of the primary index across all
// records, direction-ordered. The zero Range is returned for an empty reader.
func (r *Reader) IndexRange() indexRange {
	if len(r.records) == 0 {
		return indexRange{}
	}
	first := r.records[0].Index
	last := r.records[len(r.records)-1].Index
	return rangeidx.New(first, last, r.shape.Direction)
}

// ChannelIndexRange returns the sub-range of the primary index over which
// mnemonic carries a non-null value, and whether that channel is present at
// all in this reader.
func (r *Reader) ChannelIndexRange(mnemonic string) (indexRange, bool) {
	ci := r.shape.ColumnIndex(mnemonic)
	if ci < 0 || r.chanRanges[ci] == nil {
		return indexRange{}, false
	}
	return *r.chanRanges[ci], true
}

// Slice returns a new Reader restricted to the given channel mnemonics (in
// the order requested), always implicitly carrying the primary index. A
// requested mnemonic absent from the shape is silently dropped.
func (r *Reader) Slice(mnemonics []string) (*Reader, error) {
	keep := make([]int, 0, len(mnemonics))
	newShape := Shape{
		PrimaryMnemonic: r.shape.PrimaryMnemonic,
		PrimaryUnit:     r.shape.PrimaryUnit,
		IsTimeIndex:     r.shape.IsTimeIndex,
		Direction:       r.shape.Direction,
	}
	for _, m := range mnemonics {
		ci := r.shape.ColumnIndex(m)
		if ci < 0 {
			continue
		}
		keep = append(keep, ci)
		newShape.Mnemonics = append(newShape.Mnemonics, r.shape.Mnemonics[ci])
		newShape.Units = append(newShape.Units, r.shape.Units[ci])
		newShape.NullValues = append(newShape.NullValues, r.shape.NullValues[ci])
	}

	recs := make([]Record, len(r.records))
	for i, rec := range r.records {
		cols := make([]Value, len(keep))
		for j, ci := range keep {
			cols[j] = rec.Columns[ci]
		}
		recs[i] = Record{Index: rec.Index, Columns: cols, ChunkID: rec.ChunkID}
	}
	return NewReader(newShape, recs)
}

// Reversed returns a new Reader over the same records in the opposite
// traversal order, with Direction flipped. Used by requestLatestValues to
// walk a log from its newest record backward.
func (r *Reader) Reversed() *Reader {
	recs := make([]Record, len(r.records))
	for i, rec := range r.records {
		recs[len(r.records)-1-i] = rec
	}
	rev, err := NewReader(Shape{
		PrimaryMnemonic: r.shape.PrimaryMnemonic,
		PrimaryUnit:     r.shape.PrimaryUnit,
		IsTimeIndex:     r.shape.IsTimeIndex,
		Direction:       r.shape.Direction.Other(),
		Mnemonics:       r.shape.Mnemonics,
		Units:           r.shape.Units,
		NullValues:      r.shape.NullValues,
	}, recs)
	if err != nil {
		// Same shape and records that already validated; cannot fail.
		panic(err)
	}
	return rev
}
