// Package pool implements a mark-and-sweep object pool for fixed-size
// cells. It hands out stable integer ids referring to cells of a
// caller-chosen byte size, reclaims unreferenced cells via a tracing
// collector driven by a caller-supplied root-marking callback, and supports
// both a growable pool (backed by a MemoryProvider) and a fixed pool
// (backed by a pre-allocated byte region).
//
// The pool is single-threaded: none of its exported methods may be called
// concurrently, and none of the callbacks (MarkFunc, FreeHook,
// MemoryProvider) may call back into Alloc, ForceGC, or Free.
package pool

import (
	"modernc.org/mathutil"

	"github.com/tmravik/cellpool/internal/bits"
)

// ID is a stable, small non-negative integer naming a cell. 0 is a valid id.
type ID uint32

// NoID is the reserved sentinel meaning "no id". It is the maximum
// representable ID, which is never a valid id for any pool this package can
// construct (capacity is bounded well below 2^32 cells in practice, and
// Alloc never hands out NoID itself).
const NoID ID = ^ID(0)

const idSize = 4 // bytes needed to store one ID as an intrusive free-list link

// MarkFunc is invoked once per collection to mark the root set live. It
// should call Mark for every root-reachable id, using Get to traverse
// caller-owned cell payloads. It must not call Alloc, ForceGC, or Free. A
// nonzero return value is treated as a mark failure: the sweep phase of
// that collection is skipped.
type MarkFunc func(p *Pool, userData any) int

// FreeHook is invoked exactly once per swept cell, immediately before that
// cell rejoins the free list. It must not call Alloc, ForceGC, or Free.
type FreeHook func(p *Pool, id ID, userData any)

// GrowthPolicy optionally caps how large a growable pool may grow. A zero
// value leaves growth unbounded (subject only to the MemoryProvider).
type GrowthPolicy struct {
	// MaxCapacity is the largest capacity growth may reach. Ignored if Enable is false.
	MaxCapacity ID
	// Enable activates the MaxCapacity ceiling.
	Enable bool
}

// Config groups the parameters for NewGrowable.
type Config struct {
	// CellSize is the payload size in bytes of every cell. Must be >= 4
	// (the size of an intrusive free-list link).
	CellSize int

	// InitialCapacity is the pool's starting slot count. Must be >= 1.
	InitialCapacity int

	// Provider backs the pool's growable storage. If nil, DefaultMemoryProvider is used.
	Provider MemoryProvider
	// ProviderUserData is passed through to Provider unchanged.
	ProviderUserData any

	// MarkFn walks the root set during a collection. Required.
	MarkFn MarkFunc
	// MarkUserData is passed through to MarkFn unchanged.
	MarkUserData any

	// FreeHook is notified once per swept cell. Required.
	FreeHook FreeHook
	// FreeUserData is passed through to FreeHook unchanged.
	FreeUserData any

	// Growth optionally caps how large the pool may grow.
	Growth GrowthPolicy
}

// Pool is a self-contained mark-and-sweep cell allocator. The zero value is
// not usable; construct one with NewGrowable or NewFixed.
type Pool struct {
	cellSize int
	capacity ID
	storage  []byte

	marks *bits.Set // one bit per slot, meaningful only during a collection
	free  *bits.Set // one bit per slot: is this slot currently on the free list

	freeHead ID

	provider         MemoryProvider
	providerUserData any

	markFn       MarkFunc
	markUserData any

	freeHook     FreeHook
	freeUserData any

	fixed  bool
	growth GrowthPolicy

	inCallback bool // reentrancy guard: set while running markFn/freeHook
}

// DefaultConfig returns a Config with DefaultMemoryProvider and unbounded
// growth, leaving only the required fields (CellSize, InitialCapacity,
// MarkFn, FreeHook) for the caller to fill in.
func DefaultConfig(markFn MarkFunc, freeHook FreeHook) Config {
	return Config{
		Provider: DefaultMemoryProvider,
		MarkFn:   markFn,
		FreeHook: freeHook,
	}
}

// NewGrowable constructs a growable pool per cfg. All slots start free and
// unmarked.
func NewGrowable(cfg Config) (*Pool, error) {
	if err := validateCommon(cfg.CellSize, cfg.InitialCapacity, cfg.MarkFn, cfg.FreeHook); err != nil {
		return nil, err
	}

	provider := cfg.Provider
	if provider == nil {
		provider = DefaultMemoryProvider
	}

	p := &Pool{
		cellSize:         cfg.CellSize,
		provider:         provider,
		providerUserData: cfg.ProviderUserData,
		markFn:           cfg.MarkFn,
		markUserData:     cfg.MarkUserData,
		freeHook:         cfg.FreeHook,
		freeUserData:     cfg.FreeUserData,
		growth:           cfg.Growth,
	}

	size := cfg.InitialCapacity * cfg.CellSize
	region, ok := provider(nil, 0, size, cfg.ProviderUserData)
	if !ok {
		return nil, ErrProviderFailed
	}

	p.storage = region
	p.capacity = ID(cfg.InitialCapacity)
	p.marks = bits.New(cfg.InitialCapacity)
	p.free = bits.New(cfg.InitialCapacity)
	p.freeHead = NoID
	p.initFreeList(0, p.capacity)

	return p, nil
}

// NewFixed constructs a pool backed by a pre-allocated byte region owned by
// the caller. The capacity is the largest number of cells that fit in
// region after reserving bookkeeping overhead for the mark and free
// bitmaps; it fails if that leaves room for fewer than one cell. The
// caller must not mutate region for the pool's lifetime.
//
// Every cell starts off the free list and is discovered free only by the
// first collection's sweep: region's contents aren't freshly minted by this
// package the way a growable pool's provider-allocated storage is, so
// nothing is assumed free until a sweep confirms it.
func NewFixed(cellSize int, region []byte, markFn MarkFunc, markUserData any, freeHook FreeHook, freeUserData any) (*Pool, error) {
	if cellSize < idSize {
		return nil, ErrCellTooSmall
	}
	if markFn == nil {
		return nil, ErrNoMarkFn
	}
	if freeHook == nil {
		return nil, ErrNoFreeHook
	}

	capacity := fixedCapacity(len(region), cellSize)
	if capacity < 1 {
		return nil, ErrRegionTooSmall
	}

	p := &Pool{
		cellSize:     cellSize,
		storage:      region[:capacity*cellSize],
		provider:     fixedProvider,
		markFn:       markFn,
		markUserData: markUserData,
		freeHook:     freeHook,
		freeUserData: freeUserData,
		fixed:        true,
	}
	p.capacity = ID(capacity)
	p.marks = bits.New(capacity)
	p.free = bits.New(capacity)
	p.freeHead = NoID

	return p, nil
}

// fixedCapacity computes the largest cell count that fits in totalBytes
// once descriptor and bitmap overhead is reserved. The mark and free
// bitmaps both scale with capacity, so the fit is solved by scanning down
// from an optimistic upper bound rather than a closed-form division;
// mathutil.BitLen picks that upper bound the same way a size-class
// allocator buckets a request by its bit length.
func fixedCapacity(totalBytes, cellSize int) int {
	const descriptorOverhead = 64 // approximate Pool struct + slice header bookkeeping

	avail := totalBytes - descriptorOverhead
	if avail <= 0 {
		return 0
	}

	upper := avail / cellSize
	if upper < 1 {
		return 0
	}
	upper = 1 << uint(mathutil.BitLen(upper))

	for c := upper; c >= 1; c-- {
		bitmapBytes := 2 * (((c + 63) / 64) * 8) // mark bitmap + free bitmap
		if c*cellSize+bitmapBytes <= avail {
			return c
		}
	}
	return 0
}

func validateCommon(cellSize, initialCapacity int, markFn MarkFunc, freeHook FreeHook) error {
	if cellSize < idSize {
		return ErrCellTooSmall
	}
	if initialCapacity < 1 {
		return ErrBadCapacity
	}
	if markFn == nil {
		return ErrNoMarkFn
	}
	if freeHook == nil {
		return ErrNoFreeHook
	}
	return nil
}

// Count returns the current total number of slots (allocated plus free).
func (p *Pool) Count() ID {
	return p.capacity
}

// Get returns the current address of the payload for id, and whether id is
// in range. The returned slice is invalidated by any subsequent call to
// Alloc, ForceGC, or Free.
func (p *Pool) Get(id ID) ([]byte, bool) {
	if id >= p.capacity {
		return nil, false
	}
	off := int(id) * p.cellSize
	return p.storage[off : off+p.cellSize], true
}

// Mark sets the mark bit for id. Meaningful only when called from within a
// MarkFunc; outside a collection the bit is cleared again at the next
// collection's clear phase.
func (p *Pool) Mark(id ID) {
	if id >= p.capacity {
		return
	}
	p.marks.Set(int(id))
}

// Free destroys the pool. For a growable pool this releases provider-owned
// storage via provider(region, oldSize, 0, userData); for a fixed pool it
// is a no-op on storage, since the caller owns the backing bytes. Free does
// not invoke the free hook on remaining cells — it is teardown, not a
// sweep. Callers needing per-cell teardown should call ForceGC with a
// MarkFunc that marks nothing, then Free.
func (p *Pool) Free() {
	p.guardReentrancy()
	if !p.fixed {
		p.provider(p.storage, len(p.storage), 0, p.providerUserData)
	}
	p.storage = nil
}
