package sim

import (
	"github.com/rv32edu/toolchain/pkg/device"
	"github.com/rv32edu/toolchain/pkg/isa"
)

// State is the mutable processor state driven by Simulator. It
// implements isa.Processor so pkg/isa's Exec functions can run against
// it without pkg/isa depending on pkg/sim.
type State struct {
	regs [isa.NumRegisters]uint32
	pc   uint32
	mem  *memory

	heapPtr     uint32
	heapBegin   uint32 // lower bound of the heap segment (Config.Segments.HeapBegin)
	heapCeiling uint32 // Sbrk refuses to grow the heap past this address

	textBase uint32
	textLen  uint32 // text segment length in bytes, for fetch bounds checks

	dataBase uint32
	dataLen  uint32 // static data segment length in bytes

	stackFloor uint32 // lowest address the stack may reach (== heapCeiling)
	stackTop   uint32 // Config.Segments.StackBegin, the initial sp

	halted   bool
	exitCode int32

	sink device.Sink

	// recorder, when non-nil, receives every mutation made during the
	// in-flight Step call; Simulator sets it before calling isa.Execute
	// and clears it afterward.
	recorder *[]Diff
}

func (s *State) record(d Diff) {
	if s.recorder != nil {
		*s.recorder = append(*s.recorder, d)
	}
}

// Reg reads a general-purpose register; x0 always reads as zero.
func (s *State) Reg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return s.regs[i]
}

// SetReg writes a general-purpose register. Writes to x0 are silently
// discarded and, deliberately unlike every other mutator here, never
// reach the diff log: recording a no-op write would make undo replay a
// phantom x0 write that never had any effect to reverse.
func (s *State) SetReg(i uint32, v uint32) {
	if i == 0 {
		return
	}
	old := s.regs[i]
	s.regs[i] = v
	s.record(RegisterWrite{Reg: i, Old: old, New: v})
}

func (s *State) PC() uint32 { return s.pc }

func (s *State) SetPC(v uint32) {
	old := s.pc
	s.pc = v
	s.record(PCWrite{Old: old, New: v})
}

// inSegment reports whether the size-byte access starting at addr lies
// entirely within one of the four defined segments: text, static data,
// heap (up to the current break, not the reserved ceiling — an address
// past heapPtr is unmapped until sbrk grows into it), or stack (down to
// the guard band floor). Anything else — including the gap between
// text-end and the static segment, and the gap above the heap's current
// break but below the stack — is a fault (spec.md §7).
func (s *State) inSegment(addr, size uint32) bool {
	end := addr + size
	if end < addr {
		return false // overflow
	}
	switch {
	case addr >= s.textBase && end <= s.textBase+s.textLen:
		return true
	case addr >= s.dataBase && end <= s.dataBase+s.dataLen:
		return true
	case addr >= s.heapBegin && end <= s.heapPtr:
		return true
	case addr >= s.stackFloor && end <= s.stackTop:
		return true
	default:
		return false
	}
}

func (s *State) LoadByte(addr uint32) (byte, error) {
	if !s.inSegment(addr, 1) {
		return 0, ErrSegmentFault
	}
	return s.mem.readByte(addr), nil
}

func (s *State) LoadHalf(addr uint32) (uint16, error) {
	if addr%2 != 0 {
		return 0, ErrUnalignedAccess
	}
	if !s.inSegment(addr, 2) {
		return 0, ErrSegmentFault
	}
	b := s.mem.readBytes(addr, 2)
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (s *State) LoadWord(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, ErrUnalignedAccess
	}
	if !s.inSegment(addr, 4) {
		return 0, ErrSegmentFault
	}
	b := s.mem.readBytes(addr, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (s *State) StoreByte(addr uint32, v byte) error {
	if !s.inSegment(addr, 1) {
		return ErrSegmentFault
	}
	old := s.mem.writeByte(addr, v)
	s.record(MemoryWrite{Addr: addr, Old: []byte{old}, New: []byte{v}})
	return nil
}

func (s *State) StoreHalf(addr uint32, v uint16) error {
	if addr%2 != 0 {
		return ErrUnalignedAccess
	}
	if !s.inSegment(addr, 2) {
		return ErrSegmentFault
	}
	data := []byte{byte(v), byte(v >> 8)}
	old := s.mem.writeBytes(addr, data)
	s.record(MemoryWrite{Addr: addr, Old: old, New: data})
	return nil
}

func (s *State) StoreWord(addr uint32, v uint32) error {
	if addr%4 != 0 {
		return ErrUnalignedAccess
	}
	if !s.inSegment(addr, 4) {
		return ErrSegmentFault
	}
	data := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	old := s.mem.writeBytes(addr, data)
	s.record(MemoryWrite{Addr: addr, Old: old, New: data})
	return nil
}

// Sbrk moves the heap pointer by n bytes and returns its prior value,
// refusing moves that would enter the stack guard band (Open Question
// decision, DESIGN.md: ceiling = StackBegin - Config.StackGuardBytes).
func (s *State) Sbrk(n int32) (uint32, error) {
	old := s.heapPtr
	next := uint32(int32(old) + n)
	if n > 0 && next > s.heapCeiling {
		return 0, ErrHeapExhausted
	}
	s.heapPtr = next
	s.record(HeapPointerWrite{Old: old, New: next})
	return old, nil
}

func (s *State) Halt(code int32) {
	s.halted = true
	s.exitCode = code
}

func (s *State) Sink() device.Sink { return s.sink }

// fetchWord reads the instruction word at addr, enforcing that fetches
// stay within the text segment (spec.md §4.5: "fetching an address
// outside text is a runtime error").
func (s *State) fetchWord(addr uint32) (isa.Word, error) {
	if addr%4 != 0 {
		return 0, ErrUnalignedAccess
	}
	if addr < s.textBase || addr >= s.textBase+s.textLen {
		return 0, ErrFetchOutOfBounds
	}
	b := s.mem.readBytes(addr, 4)
	return isa.Word(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24), nil
}
