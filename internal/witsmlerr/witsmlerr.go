// Package witsmlerr defines the channel engine's error kinds.
//
// Validation errors (ErrDuplicateIndex, ErrIndexOutOfOrder, ErrInvalidRange)
// are returned bare and are fatal for the current operation. Store-layer
// failures are wrapped with one of the Read/Write/Update/Delete
// constructors, which chain both a kind sentinel and the underlying cause
// so callers can errors.Is against either.
package witsmlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIndex is returned when two records in an input stream share
	// the same primary index value.
	ErrDuplicateIndex = errors.New("duplicate index")

	// ErrIndexOutOfOrder is returned when an input stream's primary index
	// violates the configured direction's monotonicity.
	ErrIndexOutOfOrder = errors.New("index out of order")

	// ErrInvalidRange is returned for direction mismatches, heterogeneous
	// units on an existing mnemonic, or other range/shape contract
	// violations that are not an ordering defect.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNotFound marks an object that does not exist. Fetch operations
	// treat an empty result as a normal outcome, not this error; it is
	// used by header/log lookups that expect exactly one match.
	ErrNotFound = errors.New("not found")

	errRead   = errors.New("read error")
	errWrite  = errors.New("write error")
	errUpdate = errors.New("update error")
	errDelete = errors.New("delete error")
)

// ReadError wraps a store read failure with its cause.
func ReadError(cause error) error { return fmt.Errorf("%w: %w", errRead, cause) }

// WriteError wraps a store write failure with its cause.
func WriteError(cause error) error { return fmt.Errorf("%w: %w", errWrite, cause) }

// UpdateError wraps a header/metadata update failure with its cause.
func UpdateError(cause error) error { return fmt.Errorf("%w: %w", errUpdate, cause) }

// DeleteError wraps a store delete failure with its cause.
func DeleteError(cause error) error { return fmt.Errorf("%w: %w", errDelete, cause) }

// IsReadError reports whether err is (or wraps) a read-error kind.
func IsReadError(err error) bool { return errors.Is(err, errRead) }

// IsWriteError reports whether err is (or wraps) a write-error kind.
func IsWriteError(err error) bool { return errors.Is(err, errWrite) }

// IsUpdateError reports whether err is (or wraps) an update-error kind.
func IsUpdateError(err error) bool { return errors.Is(err, errUpdate) }

// IsDeleteError reports whether err is (or wraps) a delete-error kind.
func IsDeleteError(err error) bool { return errors.Is(err, errDelete) }
