package pool

import "errors"

// Sentinel errors returned by the pool constructors and by ForceGC. Use
// errors.Is to test for a specific cause.
var (
	// ErrNoMarkFn is returned when a pool is constructed without a mark callback.
	ErrNoMarkFn = errors.New("cellpool: mark function is required")

	// ErrNoFreeHook is returned when a pool is constructed without a free hook.
	ErrNoFreeHook = errors.New("cellpool: free hook is required")

	// ErrCellTooSmall is returned when cell size can't hold an intrusive free-list link.
	ErrCellTooSmall = errors.New("cellpool: cell size must be at least the size of an id")

	// ErrBadCapacity is returned when the requested initial capacity is less than 1.
	ErrBadCapacity = errors.New("cellpool: initial capacity must be at least 1")

	// ErrRegionTooSmall is returned when a fixed region can't fit the descriptor,
	// bitmap overhead, and at least one cell.
	ErrRegionTooSmall = errors.New("cellpool: region too small for descriptor, bitmap, and at least one cell")

	// ErrProviderFailed is returned by NewGrowable when the memory provider fails
	// to supply the initial storage. A rejected growth request later on makes
	// Alloc return NoID instead.
	ErrProviderFailed = errors.New("cellpool: memory provider failed to allocate storage")

	// ErrMarkFailed wraps a nonzero status returned by a MarkFunc. See ForceGC.
	ErrMarkFailed = errors.New("cellpool: mark callback failed")
)
