package isa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmIRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2047, -2048} {
		var w Word
		w = w.WithImmI(v)
		require.Equal(t, v, w.ImmI())
	}
}

func TestImmSRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2047, -2048} {
		var w Word
		w = w.WithImmS(v)
		require.Equal(t, v, w.ImmS())
	}
}

func TestImmBRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 2, -2, 4094, -4096} {
		var w Word
		w = w.WithImmB(v)
		require.Equal(t, v, w.ImmB())
	}
}

func TestImmJRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 2, -2, 1048574, -1048576} {
		var w Word
		w = w.WithImmJ(v)
		require.Equal(t, v, w.ImmJ())
	}
}

func TestImmURoundTrip(t *testing.T) {
	var w Word
	w = w.WithImmU(0x12345000)
	require.Equal(t, int32(0x12345000), w.ImmU())
}

func TestFieldAccessorsIndependent(t *testing.T) {
	var w Word
	w = w.WithOpcode(0x33).WithRD(5).WithFunct3(2).WithRS1(10).WithRS2(15).WithFunct7(0x20)
	require.Equal(t, uint32(0x33), w.Opcode())
	require.Equal(t, uint32(5), w.RD())
	require.Equal(t, uint32(2), w.Funct3())
	require.Equal(t, uint32(10), w.RS1())
	require.Equal(t, uint32(15), w.RS2())
	require.Equal(t, uint32(0x20), w.Funct7())
}
