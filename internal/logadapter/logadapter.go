// Package logadapter maps a log object's channel-data surface onto the
// channel engine: query/reassembly, latest-values retrieval, merge-driven
// update, and cascade delete, mediating transactions and the configured
// context limits along the way.
package logadapter

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/nilsbenson/witsml-server/internal/channel"
	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
	"github.com/nilsbenson/witsml-server/internal/chunker"
	"github.com/nilsbenson/witsml-server/internal/chunkstore"
	"github.com/nilsbenson/witsml-server/internal/dbtxn"
	"github.com/nilsbenson/witsml-server/internal/engineconfig"
	"github.com/nilsbenson/witsml-server/internal/logging"
	"github.com/nilsbenson/witsml-server/internal/merger"
)

// ReturnMode is the query-time projection the caller requested.
type ReturnMode int

const (
	ReturnFull ReturnMode = iota
	ReturnIDOnly
	ReturnDataOnly
	ReturnRequested
)

// Query describes one read request against a log's channel data.
type Query struct {
	// Mnemonics is the requested channel subset. The primary mnemonic is
	// always implicitly included. Empty means "every declared channel".
	Mnemonics []string

	// Range, when HasRange is true, bounds the primary index of returned
	// records. An empty range (HasRange false) requests the full log.
	Range    rangeidx.Range[float64]
	HasRange bool

	Return ReturnMode
}

// Result is the data-assembly outcome of a query.
type Result struct {
	// Mnemonics is the channel order of Rows. The primary mnemonic leads
	// this list (and every row) only when StreamIndexValuePairs is set.
	Mnemonics []string
	Rows      [][]string

	// ObservedRanges is, per mnemonic, the [min,max] primary-index span
	// actually present in Rows, for echoing back into the header.
	ObservedRanges map[string]rangeidx.Range[float64]

	// Truncated is true if MaxDataNodes or MaxDataPoints cut the result
	// short of the full matching set.
	Truncated bool
}

// Adapter is the channel-data facade for one log object.
type Adapter struct {
	shape  channel.LogShape
	store  *chunkstore.Store
	cfg    engineconfig.Config
	logger *slog.Logger
}

// New returns an Adapter over shape, backed by store and tuned by cfg.
func New(shape channel.LogShape, store *chunkstore.Store, cfg engineconfig.Config, logger *slog.Logger) *Adapter {
	logger = logging.Default(logger)
	return &Adapter{shape: shape, store: store, cfg: cfg, logger: logger.With("component", "logadapter")}
}

func (a *Adapter) rangeSize() float64 {
	if a.shape.IsTimeIndex {
		return a.cfg.TimeRangeSize * rangeidx.MicrosecondsPerSecond
	}
	return a.cfg.DepthRangeSize
}

func (a *Adapter) indices() []channel.IndexDescriptor {
	return []channel.IndexDescriptor{{
		Mnemonic:       a.shape.PrimaryMnemonic,
		Unit:           a.shape.PrimaryUnit,
		Direction:      a.shape.Direction(),
		IsTimeIndex:    a.shape.IsTimeIndex,
		TimeZoneOffset: a.shape.TimeZoneOffset,
	}}
}

func mnemonicsWithPrimary(primary string, requested []string) []string {
	if len(requested) == 0 {
		return nil
	}
	for _, m := range requested {
		if m == primary {
			return requested
		}
	}
	return append([]string{primary}, requested...)
}

// QueryHeadersAndData assembles rows for uri over query's range and
// mnemonic subset, enforcing the configured context limits.
func (a *Adapter) QueryHeadersAndData(ctx context.Context, uri string, query Query) (Result, error) {
	reqRange := query.Range
	if !query.HasRange {
		reqRange = chunkstore.FullRange(a.shape.Direction())
	}

	chunks, err := a.store.Fetch(ctx, uri, a.shape.PrimaryMnemonic, reqRange, a.shape.Direction())
	if err != nil {
		return Result{}, err
	}

	reader, err := readerFromChunks(chunks, a.shape)
	if err != nil {
		return Result{}, err
	}

	mnemonics := query.Mnemonics
	switch query.Return {
	case ReturnIDOnly, ReturnDataOnly:
		mnemonics = nil
	}
	if len(mnemonics) > 0 {
		mnemonics = mnemonicsWithPrimary(a.shape.PrimaryMnemonic, mnemonics)
		reader, err = reader.Slice(mnemonics)
		if err != nil {
			return Result{}, err
		}
	}

	return a.assemble(reader, query.HasRange, reqRange)
}

// RequestLatestValues walks the log in reverse and stops once n records
// have been accumulated per channel, still honoring context limits.
func (a *Adapter) RequestLatestValues(ctx context.Context, uri string, n int) (Result, error) {
	chunks, err := a.store.Fetch(ctx, uri, a.shape.PrimaryMnemonic, chunkstore.FullRange(a.shape.Direction()), a.shape.Direction())
	if err != nil {
		return Result{}, err
	}
	reader, err := readerFromChunks(chunks, a.shape)
	if err != nil {
		return Result{}, err
	}

	reversed := reader.Reversed()
	if n > 0 && n < reversed.Len() {
		recs := make([]channel.Record, 0, n)
		counts := make([]int, len(reversed.Shape().Mnemonics))
		for len(recs) < n || (len(counts) > 0 && slices.Min(counts) < n) {
			rec, err := reversed.Next()
			if err != nil {
				break
			}
			recs = append(recs, rec)
			for ci, v := range rec.Columns {
				if !v.Null {
					counts[ci]++
				}
			}
		}
		reversed, err = channel.NewReader(reversed.Shape(), recs)
		if err != nil {
			return Result{}, err
		}
	}

	return a.assemble(reversed, false, rangeidx.Range[float64]{})
}

// assemble walks reader into a Result. When cfg.StreamIndexValuePairs is
// set, the primary index is emitted as an explicit leading column in both
// the metadata enumeration (Result.Mnemonics) and every row, per spec §6;
// when unset, the index drives ordering and ObservedRanges but is not
// itself enumerated as a returned column.
func (a *Adapter) assemble(reader *channel.Reader, boundsKnown bool, bounds rangeidx.Range[float64]) (Result, error) {
	shape := reader.Shape()
	streamPairs := a.cfg.StreamIndexValuePairs

	result := Result{
		Mnemonics:      append([]string{}, shape.Mnemonics...),
		ObservedRanges: make(map[string]rangeidx.Range[float64]),
	}
	if streamPairs {
		result.Mnemonics = append([]string{shape.PrimaryMnemonic}, result.Mnemonics...)
	}

	nodeLimit := a.cfg.MaxDataNodes
	if nodeLimit > 0 && len(result.Mnemonics) > nodeLimit {
		result.Mnemonics = result.Mnemonics[:nodeLimit]
		result.Truncated = true
	}

	channelMnemonics := result.Mnemonics
	if streamPairs {
		channelMnemonics = result.Mnemonics[1:]
	}

	pointLimit := a.cfg.MaxDataPoints
	for {
		rec, err := reader.Next()
		if err == channel.ErrNoMoreRecords {
			break
		}
		if err != nil {
			return Result{}, err
		}
		if pointLimit > 0 && len(result.Rows) >= pointLimit {
			result.Truncated = true
			break
		}

		row := make([]string, 0, len(result.Mnemonics))
		if streamPairs {
			row = append(row, formatIndex(shape, rec.Index))
		}
		for _, m := range channelMnemonics {
			ci := shape.ColumnIndex(m)
			if ci < 0 {
				row = append(row, "")
				continue
			}
			v := rec.Columns[ci]
			if v.Null {
				row = append(row, "")
			} else {
				row = append(row, v.Text)
				widenObserved(result.ObservedRanges, m, rec.Index, shape.Direction)
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func widenObserved(ranges map[string]rangeidx.Range[float64], mnemonic string, idx float64, dir rangeidx.Direction) {
	rg, ok := ranges[mnemonic]
	if !ok {
		ranges[mnemonic] = rangeidx.New(idx, idx, dir)
		return
	}
	lo, hi := rg.Sorted()
	if idx < lo {
		lo = idx
	}
	if idx > hi {
		hi = idx
	}
	if dir == rangeidx.Increasing {
		rg.Start, rg.End = lo, hi
	} else {
		rg.Start, rg.End = hi, lo
	}
	ranges[mnemonic] = rg
}

func formatIndex(shape channel.Shape, idx float64) string {
	if shape.IsTimeIndex {
		return channel.MicrosToTime(idx).Format(time.RFC3339Nano)
	}
	return strconv.FormatFloat(idx, 'f', -1, 64)
}

// UpdateData merges incoming into the stored chunks overlapping its range,
// rechunks, and bulk-writes the result, widening the header's per-curve
// index ranges.
func (a *Adapter) UpdateData(ctx context.Context, uri string, incoming *channel.Reader, txn *dbtxn.Transaction) error {
	if incoming.Len() == 0 {
		return nil
	}

	updateRange := incoming.IndexRange()
	extentSize := a.rangeSize()
	loExtent := rangeidx.ComputeAlignedExtent(min2(updateRange.Start, updateRange.End), extentSize, a.shape.Direction())
	hiExtent := rangeidx.ComputeAlignedExtent(max2(updateRange.Start, updateRange.End), extentSize, a.shape.Direction())
	existingRange := rangeidx.New(loExtent.Start, hiExtent.End, a.shape.Direction())

	existingChunks, err := a.store.Fetch(ctx, uri, a.shape.PrimaryMnemonic, existingRange, a.shape.Direction())
	if err != nil {
		return err
	}
	existingReader, err := readerFromChunks(existingChunks, a.shape)
	if err != nil {
		return err
	}

	merged, err := merger.Merge(existingReader, incoming, updateRange)
	if err != nil {
		return err
	}

	outputs, err := chunker.Chunk(merged, extentSize)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		return nil
	}

	mergedShape := merged.Shape()
	inputs := make([]chunkstore.ChunkInput, len(outputs))
	for i, o := range outputs {
		inputs[i] = chunkstore.ChunkInput{
			UID:           o.UID,
			Start:         o.Start,
			End:           o.End,
			Records:       o.Records,
			MnemonicList:  mergedShape.Mnemonics,
			UnitList:      mergedShape.Units,
			NullValueList: mergedShape.NullValues,
		}
	}

	written, err := a.store.BulkWrite(ctx, uri, a.indices(), inputs, txn)
	if err != nil {
		return err
	}
	if txn != nil {
		if err := txn.Save(ctx); err != nil {
			return err
		}
	}
	if len(written) == 0 || a.shape.UpdateHeaderRanges == nil {
		return nil
	}

	ranges := channel.HeaderRanges{PerChannel: make(map[string]rangeidx.Range[float64])}
	for _, m := range mergedShape.Mnemonics {
		if rg, ok := merged.ChannelIndexRange(m); ok {
			ranges.PerChannel[m] = rg
		}
	}
	logLo, logHi := min2(written[0].Start, written[0].End), max2(written[0].Start, written[0].End)
	for _, c := range written[1:] {
		lo, hi := min2(c.Start, c.End), max2(c.Start, c.End)
		logLo, logHi = min2(logLo, lo), max2(logHi, hi)
	}
	if a.shape.IsIncreasing {
		ranges.LogStart, ranges.LogEnd = logLo, logHi
	} else {
		ranges.LogStart, ranges.LogEnd = logHi, logLo
	}

	return a.shape.UpdateHeaderRanges(ranges)
}

// DeleteData cascade-deletes every chunk for uri under txn.
func (a *Adapter) DeleteData(ctx context.Context, uri string, txn *dbtxn.Transaction) error {
	if err := a.store.DeleteByUri(ctx, uri, txn); err != nil {
		return err
	}
	if txn != nil {
		return txn.Save(ctx)
	}
	return nil
}

func readerFromChunks(chunks []channel.Chunk, shape channel.LogShape) (*channel.Reader, error) {
	return channel.ReaderFromChunks(chunks, shape.ReaderShape())
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
