package pool

import "fmt"

// ForceGC runs one full collection unconditionally: clear every mark bit,
// invoke the mark callback, then sweep every unmarked, previously-allocated
// cell in ascending id order, invoking the free hook once per swept cell
// before it rejoins the free list. If the mark callback returns a nonzero
// status, the sweep phase is skipped for this collection and ForceGC
// returns a non-nil error wrapping ErrMarkFailed.
func (p *Pool) ForceGC() error {
	p.guardReentrancy()
	if status := p.collect(); status != 0 {
		return fmt.Errorf("%w: status %d", ErrMarkFailed, status)
	}
	return nil
}

// collect runs clear/mark/sweep and returns the mark callback's status.
// Unlike ForceGC it doesn't check reentrancy itself — callers (Alloc,
// ForceGC) are responsible for that, since Alloc triggers a collection as
// an internal step rather than a top-level call.
func (p *Pool) collect() int {
	p.marks.ClearAll()

	p.inCallback = true
	status := p.markFn(p, p.markUserData)
	p.inCallback = false

	if status != 0 {
		return status
	}

	p.sweep()
	return 0
}

// sweep reclaims every allocated-but-unmarked cell in ascending id order.
// Cells already on the free list are skipped: the spec's reference
// behavior is that only previously-allocated-and-unmarked cells are swept,
// never cells that were already free going into the collection.
func (p *Pool) sweep() {
	for id := ID(0); id < p.capacity; id++ {
		if p.marks.Get(int(id)) {
			continue
		}
		if p.free.Get(int(id)) {
			continue
		}

		p.inCallback = true
		p.freeHook(p, id, p.freeUserData)
		p.inCallback = false

		p.pushFree(id)
	}
}

// guardReentrancy panics if a mutating operation is called from within a
// MarkFunc or FreeHook, which would corrupt the collection in progress.
func (p *Pool) guardReentrancy() {
	if p.inCallback {
		panic("cellpool: mark function or free hook must not call back into the pool's mutating operations")
	}
}
