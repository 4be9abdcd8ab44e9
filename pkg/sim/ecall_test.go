package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32edu/toolchain/pkg/asm"
	"github.com/rv32edu/toolchain/pkg/device"
	"github.com/rv32edu/toolchain/pkg/link"
)

func TestPrintStringEcallWritesToSink(t *testing.T) {
	prog, errs := asm.Assemble(`
		.data
	msg:
		.asciiz "hi"
		.text
		la   x10, msg
		addi x17, x0, 4
		ecall
		addi x17, x0, 10
		ecall
	`)
	require.Empty(t, errs)
	linked, err := link.Link([]*asm.Program{prog}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := New(linked, device.NewConsole(&buf), nil)
	for !m.IsDone() {
		m.Step()
	}
	require.NoError(t, m.LastError())
	require.Equal(t, "hi", buf.String())
}

func TestUnknownEcallHalts(t *testing.T) {
	prog, errs := asm.Assemble(`
		addi x17, x0, 255
		ecall
	`)
	require.Empty(t, errs)
	linked, err := link.Link([]*asm.Program{prog}, nil)
	require.NoError(t, err)

	m := New(linked, nil, nil)
	for !m.IsDone() {
		m.Step()
	}
	require.Error(t, m.LastError())
}
