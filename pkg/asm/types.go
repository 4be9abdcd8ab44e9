// Package asm implements the RV32I assembler: lexing, pseudoinstruction
// expansion, two-pass label resolution, and per-unit Program construction
// (spec.md §4.3). It never panics; every problem it finds is accumulated
// into the returned error slice.
package asm

import (
	"errors"
	"fmt"

	"github.com/rv32edu/toolchain/pkg/isa"
)

// Segment names one of a Program's two address spaces.
type Segment int

const (
	SegText Segment = iota
	SegData
)

func (s Segment) String() string {
	if s == SegData {
		return "data"
	}
	return "text"
}

// PatchKind names the exact arithmetic a Relocation needs, per spec.md
// §9 ("relocations are recorded with the exact patch kind ... rather
// than deferred symbolic expressions").
type PatchKind int

const (
	// PatchBranch12 patches a B-format branch's 13-bit (bit 0 implicit
	// zero) pc-relative offset.
	PatchBranch12 PatchKind = iota
	// PatchJump20 patches a J-format jal's 21-bit (bit 0 implicit zero)
	// pc-relative offset.
	PatchJump20
	// PatchAbsHi20 patches a U-format auipc's upper-20-bits half of a
	// pc-relative hi/lo address-materialization pair (la/call).
	PatchAbsHi20
	// PatchAbsLo12 patches the I-format addi/jalr low-12-bits half of
	// the same pair. Its PCOffset points back at the paired auipc.
	PatchAbsLo12
	// PatchDataWord patches 4 little-endian bytes in the data segment
	// with a symbol's absolute address (plus Addend): the supplemented
	// `.word label` feature (SPEC_FULL.md §9).
	PatchDataWord
)

func (k PatchKind) String() string {
	switch k {
	case PatchBranch12:
		return "branch12"
	case PatchJump20:
		return "jump20"
	case PatchAbsHi20:
		return "abs-hi20"
	case PatchAbsLo12:
		return "abs-lo12"
	case PatchDataWord:
		return "data-word"
	default:
		return "?"
	}
}

// Relocation is a deferred patch request the linker must resolve once
// final addresses are known (spec.md §3, §4.4).
type Relocation struct {
	Segment  Segment // segment the patch target lives in
	Offset   uint32  // local byte offset of the patch target within Segment
	PCOffset int32   // byte delta from Offset to the pc-relative anchor (0, or -4 for the lo12 half of a hi/lo pair); unused for PatchDataWord
	Label    string
	Addend   int32 // only meaningful for PatchDataWord ("label+N" data words)
	Kind     PatchKind
	Line     int
}

// Symbol is one entry of a Program's local symbol table.
type Symbol struct {
	Segment Segment
	Offset  uint32
	Global  bool
}

// Program is the per-translation-unit output of Assemble (spec.md §3).
type Program struct {
	Text        []isa.Word
	Data        []byte
	Symbols     map[string]Symbol
	Relocations []Relocation
	DebugMap    map[uint32]int // instruction byte offset within Text (index*4) -> source line

	// Entry is the label this unit declares, if any, that the linker
	// should prefer as the program start (spec.md §4.4: "default `main`
	// if present"). Empty if this unit declares no `main`.
	Entry string

	// Unit is filled in by the caller (e.g. cmd/rv32's assembleFiles) to
	// identify which input this Program came from in diagnostics; it is
	// not set by Assemble itself.
	Unit int
}

// Listing renders one line per emitted instruction: its address, hex
// encoding, and disassembly, the generalized form of the teacher's
// `cmd/asm` hex+comment output (SPEC_FULL.md §9).
func (p *Program) Listing() string {
	out := ""
	for i, w := range p.Text {
		addr := uint32(i) * 4
		out += fmt.Sprintf("%08x: %08x  %s\n", addr, uint32(w), isa.Disassemble(w))
	}
	return out
}

// AssembleError pairs a source line with the problem found there.
type AssembleError struct {
	Line int
	Err  error
}

func (e *AssembleError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *AssembleError) Unwrap() error { return e.Err }

func newErr(line int, format string, args ...any) *AssembleError {
	return &AssembleError{Line: line, Err: fmt.Errorf(format, args...)}
}

// Sentinel errors wrapped by AssembleError, for errors.Is classification.
var (
	ErrUnknownMnemonic     = errors.New("asm: unknown mnemonic")
	ErrBadOperandCount     = errors.New("asm: wrong operand count")
	ErrImmediateOutOfRange = errors.New("asm: immediate out of range")
	ErrUndefinedLocalLabel = errors.New("asm: undefined local label used in a pc-relative branch")
	ErrDuplicateLabel      = errors.New("asm: duplicate label")
	ErrUnterminatedString  = errors.New("asm: unterminated string literal")
	ErrBadEscape           = errors.New("asm: malformed string escape")
	ErrDirectiveSegment    = errors.New("asm: directive not valid in current segment")
	ErrUnknownDirective    = errors.New("asm: unknown directive")
	ErrTargetNotInText     = errors.New("asm: branch/jump target is not in the text segment")
)
