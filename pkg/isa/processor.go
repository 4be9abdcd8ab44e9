package isa

import "github.com/rv32edu/toolchain/pkg/device"

// Processor is the minimal processor-state surface a descriptor's Exec
// function needs. pkg/sim.State implements it; living here (rather than
// isa depending on pkg/sim) avoids an import cycle, since pkg/sim already
// depends on pkg/isa for the descriptor table.
//
// Every mutator is expected to enforce its own invariants (x0 reads as
// zero, memory segment/alignment checks) and to record whatever undo
// bookkeeping its implementation needs; Exec functions never need to know
// about diffs.
type Processor interface {
	Reg(i uint32) uint32
	SetReg(i uint32, v uint32)

	PC() uint32
	SetPC(v uint32)

	LoadByte(addr uint32) (byte, error)
	LoadHalf(addr uint32) (uint16, error)
	LoadWord(addr uint32) (uint32, error)
	StoreByte(addr uint32, v byte) error
	StoreHalf(addr uint32, v uint16) error
	StoreWord(addr uint32, v uint32) error

	// Sbrk advances the heap pointer by n bytes (n may be negative) and
	// returns the heap pointer's value before the move. It fails if the
	// move would run the heap into the stack guard band.
	Sbrk(n int32) (uint32, error)

	// Halt marks the processor done with the given exit code.
	Halt(code int32)

	// Sink returns the environment-call output sink.
	Sink() device.Sink
}
