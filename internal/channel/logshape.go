package channel

import (
	"time"

	"github.com/nilsbenson/witsml-server/internal/channel/rangeidx"
)

// HeaderRanges is the set of per-curve index ranges a write touched, plus
// the log-level start/end, expressed in the engine's native domain
// (float64, microseconds-since-epoch for time indices). UpdateHeaderRanges
// implementations translate this into whatever the log header's native
// field types are (numeric or ISO-8601 date-time with offset).
type HeaderRanges struct {
	// PerChannel maps channel mnemonic to the [min,max] index span the
	// write observed for it (direction-ordered per the log's primary
	// direction).
	PerChannel map[string]rangeidx.Range[float64]

	// LogStart/LogEnd is the primary-index span of the chunks this write
	// stored, direction-ordered. It is not combined with the header's
	// previous start/end.
	LogStart, LogEnd float64
}

// LogShape is the capability surface the log adapter passes into the engine
// in place of a version-specific inheritance hierarchy of log adapters
// (WITSML 1.3.1.1 vs 1.4.1.1 curve shapes, depth vs time logs, etc). A
// caller constructs one LogShape per log object and the engine never
// type-switches on log version again.
type LogShape struct {
	IsTimeIndex     bool
	IsIncreasing    bool
	PrimaryMnemonic string
	PrimaryUnit     string

	// Mnemonics/Units/NullValues are parallel, ordered lists of the log's
	// channel (non-primary) curves as currently declared on the header.
	Mnemonics  []string
	Units      []string
	NullValues []string

	// TimeZoneOffset is the offset string (e.g. "+02:00") to format
	// date-time header fields with; taken from the first observed reader
	// for a time-indexed log.
	TimeZoneOffset string

	// UpdateHeaderRanges persists the observed ranges back onto the
	// caller's log header object. The engine calls this after a
	// successful write with at least one chunk written.
	UpdateHeaderRanges func(ranges HeaderRanges) error
}

// Direction returns the rangeidx.Direction implied by IsIncreasing.
func (s LogShape) Direction() rangeidx.Direction {
	if s.IsIncreasing {
		return rangeidx.Increasing
	}
	return rangeidx.Decreasing
}

// ReaderShape returns the channel.Shape this LogShape implies for building
// or validating a Reader.
func (s LogShape) ReaderShape() Shape {
	return Shape{
		PrimaryMnemonic: s.PrimaryMnemonic,
		PrimaryUnit:     s.PrimaryUnit,
		IsTimeIndex:     s.IsTimeIndex,
		Direction:       s.Direction(),
		Mnemonics:       s.Mnemonics,
		Units:           s.Units,
		NullValues:      s.NullValues,
	}
}

// TimeToMicros converts a time.Time to the microsecond-since-epoch domain
// time indices are normalized into.
func TimeToMicros(t time.Time) float64 {
	return float64(t.UnixMicro())
}

// MicrosToTime converts a microsecond-since-epoch value back to time.Time (UTC).
func MicrosToTime(us float64) time.Time {
	return time.UnixMicro(int64(us)).UTC()
}
