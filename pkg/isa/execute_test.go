package isa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32edu/toolchain/pkg/device"
)

// fakeProcessor is a minimal in-memory Processor for exercising
// descriptor Exec functions in isolation, without pulling in pkg/sim
// (which itself depends on this package).
type fakeProcessor struct {
	regs [NumRegisters]uint32
	pc   uint32
	mem  map[uint32]byte
	halt bool
	code int32
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{mem: map[uint32]byte{}}
}

func (f *fakeProcessor) Reg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return f.regs[i]
}
func (f *fakeProcessor) SetReg(i uint32, v uint32) {
	if i != 0 {
		f.regs[i] = v
	}
}
func (f *fakeProcessor) PC() uint32      { return f.pc }
func (f *fakeProcessor) SetPC(v uint32)  { f.pc = v }
func (f *fakeProcessor) LoadByte(addr uint32) (byte, error) { return f.mem[addr], nil }
func (f *fakeProcessor) LoadHalf(addr uint32) (uint16, error) {
	return uint16(f.mem[addr]) | uint16(f.mem[addr+1])<<8, nil
}
func (f *fakeProcessor) LoadWord(addr uint32) (uint32, error) {
	return uint32(f.mem[addr]) | uint32(f.mem[addr+1])<<8 | uint32(f.mem[addr+2])<<16 | uint32(f.mem[addr+3])<<24, nil
}
func (f *fakeProcessor) StoreByte(addr uint32, v byte) error {
	f.mem[addr] = v
	return nil
}
func (f *fakeProcessor) StoreHalf(addr uint32, v uint16) error {
	f.mem[addr] = byte(v)
	f.mem[addr+1] = byte(v >> 8)
	return nil
}
func (f *fakeProcessor) StoreWord(addr uint32, v uint32) error {
	f.mem[addr] = byte(v)
	f.mem[addr+1] = byte(v >> 8)
	f.mem[addr+2] = byte(v >> 16)
	f.mem[addr+3] = byte(v >> 24)
	return nil
}
func (f *fakeProcessor) Sbrk(n int32) (uint32, error) { return 0, nil }
func (f *fakeProcessor) Halt(code int32)              { f.halt = true; f.code = code }
func (f *fakeProcessor) Sink() device.Sink            { return device.Discard }

func TestExecuteAddAdvancesPC(t *testing.T) {
	d, ok := Lookup("add")
	require.True(t, ok)
	p := newFakeProcessor()
	p.SetReg(1, 10)
	p.SetReg(2, 32)
	w := d.Encode().WithRD(3).WithRS1(1).WithRS2(2)
	require.NoError(t, Execute(d, w, p))
	require.Equal(t, uint32(42), p.Reg(3))
	require.Equal(t, uint32(4), p.PC())
}

func TestExecuteBranchTakenDoesNotAdvanceByFour(t *testing.T) {
	d, ok := Lookup("beq")
	require.True(t, ok)
	p := newFakeProcessor()
	p.SetReg(1, 5)
	p.SetReg(2, 5)
	p.pc = 0x100
	w := d.Encode().WithRS1(1).WithRS2(2).WithImmB(16)
	require.NoError(t, Execute(d, w, p))
	require.Equal(t, uint32(0x110), p.PC())
}

func TestExecuteStoreThenLoad(t *testing.T) {
	sw, ok := Lookup("sw")
	require.True(t, ok)
	lw, ok := Lookup("lw")
	require.True(t, ok)

	p := newFakeProcessor()
	p.SetReg(1, 0x1000) // base
	p.SetReg(2, 0xdeadbeef)
	w := sw.Encode().WithRS1(1).WithRS2(2).WithImmS(8)
	require.NoError(t, Execute(sw, w, p))

	w = lw.Encode().WithRD(3).WithRS1(1).WithImmI(8)
	require.NoError(t, Execute(lw, w, p))
	require.Equal(t, uint32(0xdeadbeef), p.Reg(3))
}

func TestDispatchUnknownWordErrors(t *testing.T) {
	_, err := Dispatch(Word(0xffffffff))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDisassembleRoundTripsRecognizableMnemonic(t *testing.T) {
	d, ok := Lookup("addi")
	require.True(t, ok)
	w := d.Encode().WithRD(5).WithRS1(6).WithImmI(-1)
	text := Disassemble(w)
	require.Contains(t, text, "addi")
}
