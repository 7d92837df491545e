// Package pool provides a generation-checked slot pool: a dense store of
// values referenced through stable Handle values, with free-list reuse and a
// two-phase removal protocol (TakeReserve / PutBack / ForgetTicket) that lets
// callers temporarily own a value while its slot stays reserved.
package pool

import "fmt"

type record[T any] struct {
	// generation of the current (or last) occupant. Bumped when a vacant
	// slot is reused by Spawn, never on free, so a round trip through
	// TakeReserve/PutBack restores the exact original handle.
	generation uint32
	value      T
	occupied   bool
	reserved   bool
}

// Ticket proves temporary ownership of a value moved out of the pool by
// TakeReserve. The slot it names is neither occupied nor on the free list
// until the ticket is consumed by exactly one PutBack or ForgetTicket call.
// Go cannot make tickets move-only, so consumption is tracked at runtime and
// a second use panics.
type Ticket[T any] struct {
	index    uint32
	consumed *bool
}

// Index returns the reserved slot index.
func (t Ticket[T]) Index() uint32 { return t.index }

func (t Ticket[T]) spend(op string) {
	if t.consumed == nil {
		panic(fmt.Sprintf("pool: %s with a zero-value ticket", op))
	}
	if *t.consumed {
		panic(fmt.Sprintf("pool: %s with an already consumed ticket for index %d", op, t.index))
	}
	*t.consumed = true
}

// Pool is a generation-checked slot array. Vacant slots are recycled through
// a free stack in LIFO order. The zero value is an empty pool ready to use.
type Pool[T any] struct {
	records   []record[T]
	freeStack []uint32
	reserved  int
}

// New creates an empty pool.
func New[T any]() *Pool[T] {
	return &Pool[T]{}
}

// WithCapacity creates an empty pool with preallocated record storage.
func WithCapacity[T any](capacity int) *Pool[T] {
	return &Pool[T]{records: make([]record[T], 0, capacity)}
}

// Spawn stores value in a free slot (growing storage if none is free) and
// returns its handle. Never fails.
func (p *Pool[T]) Spawn(value T) Handle[T] {
	return p.SpawnWith(func(Handle[T]) T { return value })
}

// SpawnWith constructs the value with the handle it is about to be given.
// The handle is not valid until SpawnWith returns.
func (p *Pool[T]) SpawnWith(construct func(Handle[T]) T) Handle[T] {
	if n := len(p.freeStack); n > 0 {
		index := p.freeStack[n-1]
		p.freeStack = p.freeStack[:n-1]

		rec := &p.records[index]
		if rec.occupied {
			panic(fmt.Sprintf("pool: free stack contained occupied record at index %d", index))
		}

		generation := rec.generation + 1
		handle := Handle[T]{index: index, generation: generation}
		value := construct(handle)
		rec.generation = generation
		rec.value = value
		rec.occupied = true
		return handle
	}

	handle := Handle[T]{index: uint32(len(p.records)), generation: 1}
	value := construct(handle)
	p.records = append(p.records, record[T]{
		generation: 1,
		value:      value,
		occupied:   true,
	})
	return handle
}

// SpawnAtHandle stores value at the exact index and generation the handle
// names, growing storage as needed. Used to rebuild a pool from serialized
// records so persisted handles remain valid. Returns an error if the slot is
// occupied or reserved.
func (p *Pool[T]) SpawnAtHandle(handle Handle[T], value T) error {
	if handle.IsNone() {
		return fmt.Errorf("pool: spawn at none handle")
	}
	for uint32(len(p.records)) <= handle.index {
		p.freeStack = append(p.freeStack, uint32(len(p.records)))
		p.records = append(p.records, record[T]{})
	}
	rec := &p.records[handle.index]
	if rec.occupied {
		return fmt.Errorf("pool: record %d already occupied", handle.index)
	}
	if rec.reserved {
		return fmt.Errorf("pool: record %d is reserved", handle.index)
	}
	for i, free := range p.freeStack {
		if free == handle.index {
			p.freeStack = append(p.freeStack[:i], p.freeStack[i+1:]...)
			break
		}
	}
	rec.generation = handle.generation
	rec.value = value
	rec.occupied = true
	return nil
}

func (p *Pool[T]) recordAt(index uint32) *record[T] {
	if index >= uint32(len(p.records)) {
		return nil
	}
	return &p.records[index]
}

// TryBorrow returns a pointer to the value behind the handle, or nil if the
// handle is stale, reserved, or out of range.
func (p *Pool[T]) TryBorrow(handle Handle[T]) *T {
	rec := p.recordAt(handle.index)
	if rec == nil || !rec.occupied || rec.generation != handle.generation {
		return nil
	}
	return &rec.value
}

// TryBorrowMut is an alias for TryBorrow kept for call-site symmetry with
// Borrow/BorrowMut; Go pointers are mutable either way.
func (p *Pool[T]) TryBorrowMut(handle Handle[T]) *T {
	return p.TryBorrow(handle)
}

// Borrow returns the value behind the handle, panicking if the handle is
// invalid. For call sites that have already proven validity; a panic here is
// a programming error, not a runtime condition.
func (p *Pool[T]) Borrow(handle Handle[T]) *T {
	v := p.TryBorrow(handle)
	if v == nil {
		panic(fmt.Sprintf("pool: attempt to borrow through invalid handle %v", handle))
	}
	return v
}

// BorrowMut is the panicking mutable borrow; see Borrow.
func (p *Pool[T]) BorrowMut(handle Handle[T]) *T {
	return p.Borrow(handle)
}

// TryFree removes the value behind the handle and recycles its slot.
// A stale or repeated free is a no-op reporting ok=false.
func (p *Pool[T]) TryFree(handle Handle[T]) (T, bool) {
	var zero T
	rec := p.recordAt(handle.index)
	if rec == nil || !rec.occupied || rec.generation != handle.generation {
		return zero, false
	}
	value := rec.value
	rec.value = zero
	rec.occupied = false
	p.freeStack = append(p.freeStack, handle.index)
	return value, true
}

// Free removes the value behind the handle, panicking if the handle is
// invalid.
func (p *Pool[T]) Free(handle Handle[T]) T {
	value, ok := p.TryFree(handle)
	if !ok {
		panic(fmt.Sprintf("pool: attempt to free object using invalid handle %v", handle))
	}
	return value
}

// TakeReserve moves the value out of the pool and marks its slot reserved:
// excluded from iteration and from new allocations until the returned ticket
// is consumed by PutBack or ForgetTicket. Panics if the handle is invalid;
// callers reach for TakeReserve only after domain logic has confirmed
// liveness.
func (p *Pool[T]) TakeReserve(handle Handle[T]) (Ticket[T], T) {
	ticket, value, ok := p.TryTakeReserve(handle)
	if !ok {
		panic(fmt.Sprintf("pool: attempt to take object using invalid handle %v", handle))
	}
	return ticket, value
}

// TryTakeReserve is TakeReserve reporting failure instead of panicking.
func (p *Pool[T]) TryTakeReserve(handle Handle[T]) (Ticket[T], T, bool) {
	var zero T
	rec := p.recordAt(handle.index)
	if rec == nil || !rec.occupied || rec.generation != handle.generation {
		return Ticket[T]{}, zero, false
	}
	value := rec.value
	rec.value = zero
	rec.occupied = false
	rec.reserved = true
	p.reserved++
	ticket := Ticket[T]{index: handle.index, consumed: new(bool)}
	return ticket, value, true
}

// PutBack restores a value into the slot the ticket reserves and returns the
// handle it is live under again. The generation is untouched by the take/put
// cycle, so the returned handle equals the one the value was taken through.
func (p *Pool[T]) PutBack(ticket Ticket[T], value T) Handle[T] {
	ticket.spend("PutBack")
	rec := p.recordAt(ticket.index)
	if rec == nil || !rec.reserved {
		panic(fmt.Sprintf("pool: PutBack with ticket for unreserved index %d", ticket.index))
	}
	rec.value = value
	rec.occupied = true
	rec.reserved = false
	p.reserved--
	return Handle[T]{index: ticket.index, generation: rec.generation}
}

// ForgetTicket releases a reservation without restoring the value, returning
// the slot to the free list. Every handle that referenced the slot is
// permanently invalid from here on.
func (p *Pool[T]) ForgetTicket(ticket Ticket[T]) {
	ticket.spend("ForgetTicket")
	rec := p.recordAt(ticket.index)
	if rec == nil || !rec.reserved {
		panic(fmt.Sprintf("pool: ForgetTicket with ticket for unreserved index %d", ticket.index))
	}
	rec.reserved = false
	p.reserved--
	p.freeStack = append(p.freeStack, ticket.index)
}

// IsValid reports whether the handle refers to a live value.
func (p *Pool[T]) IsValid(handle Handle[T]) bool {
	rec := p.recordAt(handle.index)
	return rec != nil && rec.occupied && rec.generation == handle.generation
}

// At returns the value at the given index regardless of generation, or nil
// if the slot is vacant or out of range.
func (p *Pool[T]) At(index uint32) *T {
	rec := p.recordAt(index)
	if rec == nil || !rec.occupied {
		return nil
	}
	return &rec.value
}

// HandleFromIndex returns the handle of the current occupant of the given
// slot, or the none handle if the slot is vacant.
func (p *Pool[T]) HandleFromIndex(index uint32) Handle[T] {
	rec := p.recordAt(index)
	if rec == nil || !rec.occupied || rec.generation == invalidGeneration {
		return Handle[T]{}
	}
	return Handle[T]{index: index, generation: rec.generation}
}

// Replace swaps the value behind a live handle for a new one, returning the
// old value and whether one was present. Panics if the generation does not
// match a still-present record; out-of-range handles report ok=false.
func (p *Pool[T]) Replace(handle Handle[T], value T) (T, bool) {
	var zero T
	rec := p.recordAt(handle.index)
	if rec == nil {
		return zero, false
	}
	if rec.generation != handle.generation {
		panic(fmt.Sprintf("pool: attempt to replace object using dangling handle %v (record generation %d)",
			handle, rec.generation))
	}
	if rec.reserved {
		panic(fmt.Sprintf("pool: attempt to replace reserved record %d", handle.index))
	}
	for i, free := range p.freeStack {
		if free == handle.index {
			p.freeStack = append(p.freeStack[:i], p.freeStack[i+1:]...)
			break
		}
	}
	old := rec.value
	hadOld := rec.occupied
	rec.value = value
	rec.occupied = true
	return old, hadOld
}

// Retain frees every value the predicate rejects.
func (p *Pool[T]) Retain(pred func(*T) bool) {
	var zero T
	for i := range p.records {
		rec := &p.records[i]
		if !rec.occupied || pred(&rec.value) {
			continue
		}
		rec.value = zero
		rec.occupied = false
		p.freeStack = append(p.freeStack, uint32(i))
	}
}

// ForEach visits every live value. Reserved slots are skipped.
func (p *Pool[T]) ForEach(fn func(*T)) {
	for i := range p.records {
		if p.records[i].occupied {
			fn(&p.records[i].value)
		}
	}
}

// Pairs visits every live value together with its handle.
func (p *Pool[T]) Pairs(fn func(Handle[T], *T)) {
	for i := range p.records {
		rec := &p.records[i]
		if rec.occupied {
			fn(Handle[T]{index: uint32(i), generation: rec.generation}, &rec.value)
		}
	}
}

// AliveCount returns the number of live values. Reserved slots are not
// counted. O(n).
func (p *Pool[T]) AliveCount() int {
	count := 0
	for i := range p.records {
		if p.records[i].occupied {
			count++
		}
	}
	return count
}

// TotalCount returns the number of allocated slots, reserved ones included.
func (p *Pool[T]) TotalCount() int {
	return len(p.records) - len(p.freeStack)
}

// Capacity returns the total number of records, vacant ones included.
func (p *Pool[T]) Capacity() int {
	return len(p.records)
}

// Clear drops every record and handle. Clearing while reservations are
// outstanding would let a later PutBack resurrect a value into a recycled
// slot, so it panics instead.
func (p *Pool[T]) Clear() {
	if p.reserved > 0 {
		var indices []uint32
		for i := range p.records {
			if p.records[i].reserved {
				indices = append(indices, uint32(i))
			}
		}
		panic(fmt.Sprintf("pool: Clear with %d outstanding reservation(s) at indices %v", p.reserved, indices))
	}
	p.records = nil
	p.freeStack = nil
}
