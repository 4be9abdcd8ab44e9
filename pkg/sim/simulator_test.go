package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32edu/toolchain/internal/config"
	"github.com/rv32edu/toolchain/pkg/asm"
	"github.com/rv32edu/toolchain/pkg/link"
)

func buildSim(t *testing.T, src string) *Simulator {
	t.Helper()
	prog, errs := asm.Assemble(src)
	require.Empty(t, errs)
	linked, err := link.Link([]*asm.Program{prog}, nil)
	require.NoError(t, err)
	return New(linked, nil, nil)
}

func TestStepExecutesAdditionAndAdvancesPC(t *testing.T) {
	m := buildSim(t, `
		addi x1, x0, 10
		addi x2, x0, 32
		add  x3, x1, x2
	`)
	start := m.GetPC()
	m.Step()
	require.Equal(t, start+4, m.GetPC())
	m.Step()
	m.Step()
	require.Equal(t, uint32(42), m.GetReg(3))
}

func TestUndoReversesRegisterWrite(t *testing.T) {
	m := buildSim(t, `addi x1, x0, 99`)
	require.False(t, m.CanUndo())
	m.Step()
	require.Equal(t, uint32(99), m.GetReg(1))
	require.True(t, m.CanUndo())
	m.Undo()
	require.Equal(t, uint32(0), m.GetReg(1))
	require.False(t, m.CanUndo())
}

func TestUndoReversesPCAfterBranch(t *testing.T) {
	m := buildSim(t, `
	loop:
		addi x1, x1, 1
		j loop
	`)
	pc0 := m.GetPC()
	m.Step() // addi
	m.Step() // j, jumps back to loop
	require.Equal(t, pc0, m.GetPC())
	m.Undo()
	require.NotEqual(t, pc0, m.GetPC())
}

func TestWriteToX0IsAlwaysZero(t *testing.T) {
	m := buildSim(t, `addi x0, x0, 5`)
	diffs := m.Step()
	require.Equal(t, uint32(0), m.GetReg(0))
	require.Equal(t, []Diff{PCWrite{Old: 0, New: 4}}, diffs, "writes to x0 must not enter the undo log")
}

func TestBreakpointToggle(t *testing.T) {
	m := buildSim(t, `
		nop
		nop
	`)
	idx := m.GetPC() / 4
	require.False(t, m.AtBreakpoint())
	require.True(t, m.ToggleBreakpointAt(idx))
	require.True(t, m.AtBreakpoint())
	require.False(t, m.ToggleBreakpointAt(idx))
	require.False(t, m.AtBreakpoint())
}

func TestUnalignedFetchHalts(t *testing.T) {
	m := buildSim(t, `nop`)
	m.SetRegNoUndo(1, 1)
	m.state.pc = m.state.pc + 1
	m.Step()
	require.True(t, m.IsDone())
	require.ErrorIs(t, m.LastError(), ErrUnalignedAccess)
}

func TestSbrkRefusesPastStackGuard(t *testing.T) {
	cfg := config.Default()
	cfg.Segments.HeapBegin = cfg.Segments.StackBegin - cfg.StackGuardBytes - 4
	prog, errs := asm.Assemble(`nop`)
	require.Empty(t, errs)
	linked, err := link.Link([]*asm.Program{prog}, cfg)
	require.NoError(t, err)
	m := New(linked, nil, cfg)
	_, sbrkErr := m.state.Sbrk(int32(cfg.StackGuardBytes) + 8)
	require.ErrorIs(t, sbrkErr, ErrHeapExhausted)
}

func TestLoadStoreOutsideAnySegmentFaults(t *testing.T) {
	m := buildSim(t, `nop`)
	// Between text's end and STATIC_BEGIN (0x10000000 by default) is an
	// unmapped gap belonging to no defined segment.
	_, err := m.state.LoadWord(m.state.textBase + m.state.textLen + 64)
	require.ErrorIs(t, err, ErrSegmentFault)

	err = m.state.StoreByte(m.state.textBase+m.state.textLen+64, 1)
	require.ErrorIs(t, err, ErrSegmentFault)
}

func TestLoadStoreWithinDefinedSegmentsSucceed(t *testing.T) {
	m := buildSim(t, `
		.data
	greeting:
		.asciiz "hi"
	`)
	_, err := m.state.LoadByte(m.state.dataBase)
	require.NoError(t, err)

	err = m.state.StoreByte(m.state.stackTop-4, 7)
	require.NoError(t, err)
	b, err := m.state.LoadByte(m.state.stackTop - 4)
	require.NoError(t, err)
	require.Equal(t, byte(7), b)

	err = m.state.StoreByte(m.state.heapBegin, 9)
	require.Error(t, err, "sbrk has not moved the heap pointer yet, so HeapBegin itself is still unmapped")
}
