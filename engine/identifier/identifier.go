package identifier

import (
	"strconv"

	"github.com/google/uuid"
)

// Allocator hands out identifiers for features and points when callers don't supply one.
type Allocator interface {
	// NewID returns an identifier that is unique for the lifetime of the process.
	//
	// Returns:
	//   - string: the new identifier
	NewID() string
}

// uuidAllocator is the default Allocator. Identifiers are random (version 4) UUIDs,
// optionally prefixed.
type uuidAllocator struct {
	prefix string
}

var _ Allocator = &uuidAllocator{}

// NewAllocator creates an Allocator backed by random UUIDs.
// uuid panics if the system randomness source is unavailable; that is treated as a fatal
// initialization error rather than a per-call failure.
//
// Parameters:
//   - options: functional options (prefix)
//
// Returns:
//   - Allocator: the newly created allocator
func NewAllocator(options ...AllocatorBuilderOption) Allocator {
	a := &uuidAllocator{}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *uuidAllocator) NewID() string {
	return a.prefix + uuid.NewString()
}

// Sequence is a deterministic Allocator producing prefix-1, prefix-2, ...
// It is meant for tests and reproducible fixtures, never for persisted data shared between processes.
type Sequence struct {
	Prefix string
	next   uint64
}

var _ Allocator = &Sequence{}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.next++
	return s.Prefix + "-" + strconv.FormatUint(s.next, 10)
}
