// Package chunker converts a channel-data record stream into a sequence of
// chunks aligned to a configured range size, detecting index violations as
// it goes. It never partially emits: validation happens before any chunk is
// handed to the caller, so a failed input produces zero output chunks.
package chunker

import (
	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
	"github.com/nilsbenson/witsml-server/internal/witsmlerr"
)

// Output is one chunked window of records, ready for the store to decide
// insert (UID == "") vs. update (UID names an existing chunk) by/(uri, UID).
// Shared per-write attributes (uri, mnemonic/unit/null lists) are not
// carried here; the store applies them at bulk-write time.
type Output struct {
	UID        string
	Start, End float64
	Records    []channel.Record
}

// Chunk reads every record from r and groups them into range-size-aligned
// chunks. r's own direction determines ascending/descending monotonicity.
//
// Returns witsmlerr.ErrDuplicateIndex or witsmlerr.ErrIndexOutOfOrder,
// unwrapped, the moment either is detected; no partial output is ever
// returned alongside an error.
func Chunk(r *channel.Reader, rangeSize float64) ([]Output, error) {
	first, err := r.Next()
	if err != nil {
		if err == channel.ErrNoMoreRecords {
			return nil, nil
		}
		return nil, err
	}

	dir := r.Direction()
	var out []Output

	plannedExtent := rangeidx.ComputeAlignedExtent(first.Index, rangeSize, dir)
	current := Output{UID: first.ChunkID, Start: first.Index, End: first.Index, Records: []channel.Record{first}}
	previousIndex := first.Index
	havePrevious := true

	for {
		rec, err := r.Next()
		if err != nil {
			if err == channel.ErrNoMoreRecords {
				break
			}
			return nil, err
		}

		if havePrevious && rec.Index == previousIndex {
			return nil, witsmlerr.ErrDuplicateIndex
		}
		if havePrevious && outOfOrder(dir, previousIndex, rec.Index) {
			return nil, witsmlerr.ErrIndexOutOfOrder
		}

		if plannedExtent.Contains(rec.Index) {
			current.Records = append(current.Records, rec)
			current.End = rec.Index
		} else {
			out = append(out, current)
			plannedExtent = rangeidx.ComputeAlignedExtent(rec.Index, rangeSize, dir)
			current = Output{UID: rec.ChunkID, Start: rec.Index, End: rec.Index, Records: []channel.Record{rec}}
		}

		previousIndex = rec.Index
		havePrevious = true
	}

	out = append(out, current)
	return out, nil
}

func outOfOrder(dir rangeidx.Direction, prev, cur float64) bool {
	if dir == rangeidx.Increasing {
		return prev > cur
	}
	return prev < cur
}
