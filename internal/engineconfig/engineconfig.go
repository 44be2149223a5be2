// Package engineconfig provides configuration persistence for the channel
// engine.
//
// Store persists and reloads the engine's tuning parameters across
// restarts: chunk extent sizes, whether a log streams index/value pairs per
// record, and the guardrail limits a single query is allowed to return.
// This is control-plane state, not data-plane state, and is not accessed
// on the query or write hot path beyond the initial load.
package engineconfig

import "context"

// Store persists and loads engine configuration.
type Store interface {
	// Load reads the configuration. Returns the zero Config if none exists.
	Load(ctx context.Context) (Config, error)

	// Save persists the configuration.
	Save(ctx context.Context, cfg Config) error
}

// Config describes the channel engine's tuning parameters.
type Config struct {
	// DepthRangeSize is the chunk extent size, in depth units, for
	// depth-indexed logs.
	DepthRangeSize float64

	// TimeRangeSize is the chunk extent size, in seconds, for
	// time-indexed logs.
	TimeRangeSize float64

	// StreamIndexValuePairs, when true, has QueryHeadersAndData encode
	// each returned row as an explicit [index, value...] pair — the
	// primary mnemonic is enumerated in the result's metadata and
	// prefixed onto every row. When false, the primary index still
	// drives ordering and per-channel observed ranges but is not itself
	// returned as a column.
	StreamIndexValuePairs bool

	// MaxDataNodes caps the number of mnemonic columns a single query
	// response may carry.
	MaxDataNodes int

	// MaxDataPoints caps the number of rows a single query response may
	// carry.
	MaxDataPoints int
}

// Default returns the engine's out-of-the-box configuration.
func Default() Config {
	return Config{
		DepthRangeSize:        1000,
		TimeRangeSize:         3600,
		StreamIndexValuePairs: true,
		MaxDataNodes:          250,
		MaxDataPoints:         100000,
	}
}
