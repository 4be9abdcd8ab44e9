package sim

import "errors"

// Sentinel runtime errors a step can raise (spec.md §7's "runtime error"
// class), distinct from pkg/asm's and pkg/link's compile/link-time ones.
var (
	ErrUnalignedAccess  = errors.New("sim: unaligned memory access")
	ErrFetchOutOfBounds = errors.New("sim: instruction fetch address outside text segment")
	ErrHeapExhausted    = errors.New("sim: sbrk would run the heap into the stack guard band")
	ErrSegmentFault     = errors.New("sim: memory access outside any defined segment")
)
