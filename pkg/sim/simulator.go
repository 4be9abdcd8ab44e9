// Package sim implements the in-process RV32I simulator: processor
// state, the step/undo/breakpoint state machine, and the environment-call
// output sink wiring (spec.md §4.5).
package sim

import (
	"github.com/rv32edu/toolchain/internal/config"
	"github.com/rv32edu/toolchain/pkg/device"
	"github.com/rv32edu/toolchain/pkg/isa"
	"github.com/rv32edu/toolchain/pkg/link"
)

// Simulator owns exactly one State and one LinkedProgram (spec.md §3's
// lifecycle note) and drives stepping, undo, and breakpoints over them.
type Simulator struct {
	state       *State
	undoStack   [][]Diff
	breakpoints map[uint32]bool // keyed by pc/4 (instruction index)
	lastErr     error
}

// New constructs a Simulator from a linked program, per spec.md §4.5's
// construction procedure: zero every register except sp/gp, load text
// and data into their segments, set pc to the entry point, and set the
// heap pointer to HeapBegin. sink is where ecall print output goes; nil
// means device.Discard. cfg nil means config.Default().
func New(linked *link.LinkedProgram, sink device.Sink, cfg *config.Config) *Simulator {
	cfg = config.OrDefault(cfg)
	if sink == nil {
		sink = device.Discard
	}

	st := &State{
		mem:         newMemory(),
		sink:        sink,
		textBase:    linked.TextBase,
		textLen:     uint32(len(linked.Text)) * 4,
		dataBase:    linked.DataBase,
		dataLen:     uint32(len(linked.Data)),
		heapPtr:     cfg.Segments.HeapBegin,
		heapBegin:   cfg.Segments.HeapBegin,
		heapCeiling: cfg.Segments.StackBegin - cfg.StackGuardBytes,
		stackFloor:  cfg.Segments.StackBegin - cfg.StackGuardBytes,
		stackTop:    cfg.Segments.StackBegin,
	}
	for i, w := range linked.Text {
		addr := linked.TextBase + uint32(i)*4
		st.mem.writeBytes(addr, wordToLE(uint32(w)))
	}
	st.mem.writeBytes(linked.DataBase, linked.Data)

	st.regs[2] = cfg.Segments.StackBegin // sp
	if addr, ok := linked.Globals["__global_pointer$"]; ok {
		st.regs[3] = addr // gp: declared global pointer symbol, if present
	} else {
		st.regs[3] = cfg.Segments.StaticBegin // gp: Open Question decision, DESIGN.md
	}
	st.pc = linked.Entry

	return &Simulator{state: st, breakpoints: map[uint32]bool{}}
}

func wordToLE(w uint32) []byte {
	return []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// Step fetches and executes the instruction at pc, returning the diffs
// it produced. Returns nil without effect once IsDone(). A runtime error
// (unaligned/out-of-bounds fetch, bad decode, failed load/store/sbrk)
// halts the simulator as if it had executed a halt instruction; callers
// distinguish the two cases with LastError.
func (m *Simulator) Step() []Diff {
	if m.state.halted {
		return nil
	}
	w, err := m.state.fetchWord(m.state.pc)
	if err != nil {
		m.state.halted = true
		m.lastErr = err
		return nil
	}
	d, err := isa.Dispatch(w)
	if err != nil {
		m.state.halted = true
		m.lastErr = err
		return nil
	}

	var diffs []Diff
	m.state.recorder = &diffs
	err = isa.Execute(d, w, m.state)
	m.state.recorder = nil

	m.undoStack = append(m.undoStack, diffs)
	if err != nil {
		m.state.halted = true
		m.lastErr = err
	}
	return diffs
}

// Undo pops the most recent step's diffs and reverses each one in
// reverse order, including any pc movement, and clears a halt caused by
// that step (spec.md §4.5: "reversing every mutation including the pc
// change"). No-op if the undo stack is empty.
func (m *Simulator) Undo() []Diff {
	if len(m.undoStack) == 0 {
		return nil
	}
	diffs := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	for i := len(diffs) - 1; i >= 0; i-- {
		m.applyReverse(diffs[i])
	}
	m.state.halted = false
	m.lastErr = nil
	return diffs
}

func (m *Simulator) applyReverse(d Diff) {
	switch v := d.(type) {
	case RegisterWrite:
		m.state.regs[v.Reg] = v.Old
	case PCWrite:
		m.state.pc = v.Old
	case MemoryWrite:
		for i, b := range v.Old {
			m.state.mem.writeByte(v.Addr+uint32(i), b)
		}
	case HeapPointerWrite:
		m.state.heapPtr = v.Old
	}
}

// CanUndo reports whether Undo has anything to reverse.
func (m *Simulator) CanUndo() bool { return len(m.undoStack) > 0 }

// IsDone reports whether the simulator has halted (via a halt ecall or a
// runtime error).
func (m *Simulator) IsDone() bool { return m.state.halted }

// LastError returns the runtime error that caused the most recent halt,
// or nil if the simulator is running or halted normally via ecall.
func (m *Simulator) LastError() error { return m.lastErr }

// ToggleBreakpointAt flips the breakpoint at instruction index idx
// (byte address idx*4) and returns its new state.
func (m *Simulator) ToggleBreakpointAt(idx uint32) bool {
	next := !m.breakpoints[idx]
	if next {
		m.breakpoints[idx] = true
	} else {
		delete(m.breakpoints, idx)
	}
	return next
}

// AtBreakpoint reports whether pc/4 is in the breakpoint set.
func (m *Simulator) AtBreakpoint() bool {
	return m.breakpoints[m.state.pc/4]
}

// GetPC returns the current program counter.
func (m *Simulator) GetPC() uint32 { return m.state.pc }

// GetReg reads a general-purpose register (x0 always reads as zero).
func (m *Simulator) GetReg(i int) uint32 { return m.state.Reg(uint32(i)) }

// SetReg writes a register as an undoable step of its own (one
// RegisterWrite diff pushed onto the undo stack), for host-driven
// register editing.
func (m *Simulator) SetReg(i int, v uint32) {
	if i == 0 {
		return
	}
	old := m.state.regs[uint32(i)]
	m.state.regs[uint32(i)] = v
	m.undoStack = append(m.undoStack, []Diff{RegisterWrite{Reg: uint32(i), Old: old, New: v}})
}

// SetRegNoUndo writes a register directly, bypassing the undo stack
// entirely — for host-side scripted setup that should not appear in the
// user-visible undo history.
func (m *Simulator) SetRegNoUndo(i int, v uint32) {
	if i == 0 {
		return
	}
	m.state.regs[uint32(i)] = v
}

// LoadByte/LoadWord expose memory inspection without going through the
// Processor interface's error-on-misalignment LoadWord for byte reads.
func (m *Simulator) LoadByte(addr uint32) (byte, error) { return m.state.LoadByte(addr) }
func (m *Simulator) LoadWord(addr uint32) (uint32, error) { return m.state.LoadWord(addr) }
