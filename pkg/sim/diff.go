package sim

// Diff is one reversible mutation the simulator applied while executing
// a single instruction. It is a closed, tagged-variant interface — four
// concrete structs, an unexported marker method — the same "closed
// interface, one struct per variant" shape the teacher repo uses for its
// per-instruction Instruction types (pkg/asm/instruction.go), reused here
// because spec.md does not flag it for replacement in this component.
type Diff interface {
	isDiff()
}

// RegisterWrite records a general-purpose register mutation. Reg is
// never 0: writes to x0 are suppressed before reaching the diff log.
type RegisterWrite struct {
	Reg      uint32
	Old, New uint32
}

func (RegisterWrite) isDiff() {}

// PCWrite records the program counter's movement for one instruction,
// whether by the automatic +4 advance or an explicit branch/jump/jalr.
type PCWrite struct {
	Old, New uint32
}

func (PCWrite) isDiff() {}

// MemoryWrite records a byte-granular store. Old/New always have equal,
// non-zero length (1, 2, or 4 bytes).
type MemoryWrite struct {
	Addr     uint32
	Old, New []byte
}

func (MemoryWrite) isDiff() {}

// HeapPointerWrite records an sbrk-driven heap pointer move.
type HeapPointerWrite struct {
	Old, New uint32
}

func (HeapPointerWrite) isDiff() {}
