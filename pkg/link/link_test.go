package link

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32edu/toolchain/internal/config"
	"github.com/rv32edu/toolchain/pkg/asm"
)

func mustAssemble(t *testing.T, src string) *asm.Program {
	t.Helper()
	prog, errs := asm.Assemble(src)
	require.Empty(t, errs)
	return prog
}

func TestLinkSingleUnitEntryDefaultsToMain(t *testing.T) {
	prog := mustAssemble(t, `
		.globl main
	main:
		addi x1, x0, 1
		ret
	`)
	linked, err := Link([]*asm.Program{prog}, nil)
	require.NoError(t, err)
	require.Equal(t, linked.TextBase, linked.Entry)
}

func TestLinkCrossUnitCallResolvesThroughGlobalTable(t *testing.T) {
	a := mustAssemble(t, `
		.globl main
	main:
		call helper
		ret
	`)
	b := mustAssemble(t, `
		.globl helper
	helper:
		ret
	`)
	linked, err := Link([]*asm.Program{a, b}, nil)
	require.NoError(t, err)
	require.Contains(t, linked.Globals, "helper")
}

func TestLinkUnresolvedSymbolFails(t *testing.T) {
	a := mustAssemble(t, `
		call ghost
	`)
	_, err := Link([]*asm.Program{a}, nil)
	require.Error(t, err)
}

func TestLinkDuplicateGlobalFails(t *testing.T) {
	a := mustAssemble(t, `
		.globl foo
	foo:
		nop
	`)
	b := mustAssemble(t, `
		.globl foo
	foo:
		nop
	`)
	_, err := Link([]*asm.Program{a, b}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateGlobal)
}

func TestLinkNoProgramsFails(t *testing.T) {
	_, err := Link(nil, nil)
	require.ErrorIs(t, err, ErrNoPrograms)
}

func TestLinkPatchesTextRelocationWithNonzeroTextBegin(t *testing.T) {
	a := mustAssemble(t, `
		.globl main
	main:
		call helper
		ret
	`)
	b := mustAssemble(t, `
		.globl helper
	helper:
		ret
	`)
	cfg := config.Default()
	cfg.Segments.TextBegin = 0x1000

	linked, err := Link([]*asm.Program{a, b}, cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.Segments.TextBegin, linked.TextBase)
	// The call's auipc+jalr pair (linked.Text[0]/[1]) must be patched with
	// helper's real pc-relative offset. Before textBegin was threaded
	// through resolveAndPatch, the patch index was computed from the
	// absolute address directly and indexed past the end of the
	// concatenated text slice whenever TextBegin was nonzero.
	wantDiff := int32(linked.Globals["helper"] - linked.TextBase)
	gotDiff := linked.Text[0].ImmU() + linked.Text[1].ImmI()
	require.Equal(t, wantDiff, gotDiff)
}

func TestLinkCopiesDataSegmentBytes(t *testing.T) {
	prog := mustAssemble(t, `
		.data
	greeting:
		.asciiz "hi"
	`)
	linked, err := Link([]*asm.Program{prog}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("hi\x00"), linked.Data)
}
