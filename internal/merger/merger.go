// Package merger implements the three-way merge of a stored record stream,
// an incoming record stream, and the incoming stream's update range into a
// single merged stream ready for rechunking.
//
// The merge is a two-pointer walk over two already-monotonic streams: at
// each step the record that comes first in log direction advances, and
// records with equal indices advance together, combined column by column. Only two streams are ever merged at
// once, so no priority queue is needed.
package merger

import (
	"slices"

	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
	"github.com/nilsbenson/witsml-server/internal/witsmlerr"
)

// unionShape is the merged output's channel layout: existing's mnemonics in
// their original order, followed by any incoming-only mnemonics.
type unionShape struct {
	shape channel.Shape

	// existingCol[i] is the column index into existing's shape for union
	// column i, or -1 if existing does not carry that mnemonic.
	existingCol []int
	// incomingCol[i] is likewise for incoming.
	incomingCol []int
}

func buildUnionShape(existing, incoming *channel.Reader) (unionShape, error) {
	es, is := existing.Shape(), incoming.Shape()

	u := unionShape{shape: channel.Shape{
		PrimaryMnemonic: es.PrimaryMnemonic,
		PrimaryUnit:     es.PrimaryUnit,
		IsTimeIndex:     es.IsTimeIndex,
		Direction:       es.Direction,
	}}
	if u.shape.PrimaryMnemonic == "" {
		u.shape.PrimaryMnemonic = is.PrimaryMnemonic
		u.shape.PrimaryUnit = is.PrimaryUnit
		u.shape.IsTimeIndex = is.IsTimeIndex
		u.shape.Direction = is.Direction
	}

	seen := make(map[string]int, len(es.Mnemonics)+len(is.Mnemonics))
	for i, m := range es.Mnemonics {
		seen[m] = len(u.shape.Mnemonics)
		u.shape.Mnemonics = append(u.shape.Mnemonics, m)
		u.shape.Units = append(u.shape.Units, es.Units[i])
		u.shape.NullValues = append(u.shape.NullValues, es.NullValues[i])
		u.existingCol = append(u.existingCol, i)
		u.incomingCol = append(u.incomingCol, slices.Index(is.Mnemonics, m))
	}
	for j, m := range is.Mnemonics {
		if _, ok := seen[m]; ok {
			// Shared mnemonic: reject heterogeneous units rather than
			// silently preferring one side.
			ei := slices.Index(es.Mnemonics, m)
			if ei >= 0 && es.Units[ei] != is.Units[j] {
				return unionShape{}, witsmlerr.ErrInvalidRange
			}
			continue
		}
		seen[m] = len(u.shape.Mnemonics)
		u.shape.Mnemonics = append(u.shape.Mnemonics, m)
		u.shape.Units = append(u.shape.Units, is.Units[j])
		u.shape.NullValues = append(u.shape.NullValues, is.NullValues[j])
		u.existingCol = append(u.existingCol, -1)
		u.incomingCol = append(u.incomingCol, j)
	}
	return u, nil
}

// projectExisting and projectIncoming map a record from one side into union
// columns; missing columns become null using the union's null sentinel.
func (u unionShape) projectExisting(rec channel.Record) []channel.Value {
	out := make([]channel.Value, len(u.shape.Mnemonics))
	for i, ec := range u.existingCol {
		if ec < 0 {
			out[i] = channel.NullValue(u.shape.NullValues[i])
			continue
		}
		out[i] = rec.Columns[ec]
	}
	return out
}

func (u unionShape) projectIncoming(rec channel.Record) []channel.Value {
	out := make([]channel.Value, len(u.shape.Mnemonics))
	for i, ic := range u.incomingCol {
		if ic < 0 {
			out[i] = channel.NullValue(u.shape.NullValues[i])
			continue
		}
		out[i] = rec.Columns[ic]
	}
	return out
}

// Merge produces the merged record stream for existing (records from
// overlapping stored chunks, in log direction), incoming (records to
// apply), and updateRange (incoming's primary-index span).
func Merge(existing, incoming *channel.Reader, updateRange rangeidx.Range[float64]) (*channel.Reader, error) {
	if existing.Len() > 0 && incoming.Len() > 0 && existing.Direction() != incoming.Direction() {
		return nil, witsmlerr.ErrInvalidRange
	}

	u, err := buildUnionShape(existing, incoming)
	if err != nil {
		return nil, err
	}
	dir := u.shape.Direction

	existing.Reset()
	incoming.Reset()

	eRec, eOK := existing.Peek()
	iRec, iOK := incoming.Peek()

	var out []channel.Record
	var lastExistingChunkID string

	precedes := func(a, b float64) bool {
		if dir == rangeidx.Increasing {
			return a < b
		}
		return a > b
	}

	for eOK || iOK {
		switch {
		case eOK && iOK && eRec.Index == iRec.Index:
			cols := make([]channel.Value, len(u.shape.Mnemonics))
			existingCols := u.projectExisting(eRec)
			incomingCols := u.projectIncoming(iRec)
			for i := range cols {
				if u.incomingCol[i] >= 0 {
					if rg, ok := incoming.ChannelIndexRange(u.shape.Mnemonics[i]); ok && rg.Contains(eRec.Index, true) {
						cols[i] = incomingCols[i]
						continue
					}
				}
				cols[i] = existingCols[i]
			}
			out = append(out, channel.Record{Index: eRec.Index, Columns: cols, ChunkID: eRec.ChunkID})
			lastExistingChunkID = eRec.ChunkID

			_, _ = existing.Next()
			_, _ = incoming.Next()
			eRec, eOK = existing.Peek()
			iRec, iOK = incoming.Peek()

		case iOK && (!eOK || precedes(iRec.Index, eRec.Index)):
			out = append(out, channel.Record{Index: iRec.Index, Columns: u.projectIncoming(iRec), ChunkID: lastExistingChunkID})
			_, _ = incoming.Next()
			iRec, iOK = incoming.Peek()

		default: // eOK, existing precedes (or incoming exhausted)
			cols := u.projectExisting(eRec)
			if updateRange.Contains(eRec.Index, true) {
				cleared := false
				for i := range cols {
					if u.incomingCol[i] < 0 {
						continue
					}
					rg, ok := incoming.ChannelIndexRange(u.shape.Mnemonics[i])
					if ok && rg.Contains(eRec.Index, true) {
						cols[i] = channel.NullValue(u.shape.NullValues[i])
						cleared = true
					}
				}
				rec := channel.Record{Index: eRec.Index, Columns: cols, ChunkID: eRec.ChunkID}
				if !cleared || rec.HasValues() {
					out = append(out, rec)
				}
			} else {
				out = append(out, channel.Record{Index: eRec.Index, Columns: cols, ChunkID: eRec.ChunkID})
			}
			lastExistingChunkID = eRec.ChunkID

			_, _ = existing.Next()
			eRec, eOK = existing.Peek()
		}
	}

	return channel.NewReader(u.shape, out)
}
