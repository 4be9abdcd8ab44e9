package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32edu/toolchain/pkg/isa"
)

func assembleOK(t *testing.T, src string) *Program {
	t.Helper()
	prog, errs := Assemble(src)
	require.Empty(t, errs, "unexpected assembly errors: %v", errs)
	require.NotNil(t, prog)
	return prog
}

func TestAssembleSimpleArithmetic(t *testing.T) {
	prog := assembleOK(t, `
		addi x1, x0, 5
		addi x2, x0, 37
		add  x3, x1, x2
	`)
	require.Len(t, prog.Text, 3)
	d, ok := isa.Lookup("add")
	require.True(t, ok)
	require.Equal(t, d.Mnemonic, isa.Disassemble(prog.Text[2])[:3])
}

func TestAssembleLocalBranchResolvesWithinUnit(t *testing.T) {
	prog := assembleOK(t, `
	loop:
		addi x1, x1, -1
		bnez x1, loop
		ret
	`)
	require.Empty(t, prog.Relocations)
	require.Len(t, prog.Text, 3)
}

func TestAssembleUndefinedLocalBranchFails(t *testing.T) {
	_, errs := Assemble(`beq x1, x2, nowhere`)
	require.NotEmpty(t, errs)
}

func TestAssembleCrossSegmentReferenceDefersToLinker(t *testing.T) {
	prog := assembleOK(t, `
		.data
	msg:
		.asciiz "hi"
		.text
		la x1, msg
	`)
	require.NotEmpty(t, prog.Relocations)
}

func TestAssembleGlobalDirectiveMarksSymbol(t *testing.T) {
	prog := assembleOK(t, `
		.globl main
	main:
		ret
	`)
	sym, ok := prog.Symbols["main"]
	require.True(t, ok)
	require.True(t, sym.Global)
	require.Equal(t, "main", prog.Entry)
}

func TestAssembleDuplicateLabelFails(t *testing.T) {
	_, errs := Assemble(`
	foo:
		nop
	foo:
		nop
	`)
	require.NotEmpty(t, errs)
}

func TestAssembleWordDirectiveWithLabelIsAlwaysRelocated(t *testing.T) {
	prog := assembleOK(t, `
		.data
	table:
		.word table
	`)
	require.Len(t, prog.Relocations, 1)
	require.Equal(t, PatchDataWord, prog.Relocations[0].Kind)
}
