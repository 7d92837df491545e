package pool

import "fmt"

// invalidGeneration marks a record that has never been occupied. It is also
// the generation of the zero-value handle, so a zero handle can never match
// a live record.
const invalidGeneration uint32 = 0

// Handle is a typed reference into a Pool: a slot index plus the generation
// the slot had when the handle was produced. The handle stays valid until the
// slot is freed and reused; after that the generations diverge and every
// lookup through the stale handle reports "gone" instead of aliasing the new
// occupant. The type parameter exists only to keep handles from different
// pools apart; structurally a handle is two integers.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// NewHandle rebuilds a handle from its raw parts. Intended for
// deserialization; handles obtained any other way come from Pool operations.
func NewHandle[T any](index, generation uint32) Handle[T] {
	return Handle[T]{index: index, generation: generation}
}

// None returns the sentinel "no object" handle.
func None[T any]() Handle[T] {
	return Handle[T]{}
}

func (h Handle[T]) Index() uint32      { return h.index }
func (h Handle[T]) Generation() uint32 { return h.generation }

// IsNone reports whether h is the sentinel handle.
func (h Handle[T]) IsNone() bool {
	return h == Handle[T]{}
}

func (h Handle[T]) IsSome() bool {
	return !h.IsNone()
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("[Idx: %d; Gen: %d]", h.index, h.generation)
}
