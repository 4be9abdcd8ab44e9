// Package link implements the RV32I linker: it concatenates per-unit
// assembler output into a single LinkedProgram, resolving every
// relocation against the union of all units' global symbols.
package link

import (
	"errors"
	"fmt"

	"github.com/rv32edu/toolchain/internal/config"
	"github.com/rv32edu/toolchain/pkg/asm"
	"github.com/rv32edu/toolchain/pkg/isa"
)

// Sentinel errors, wrapped by LinkError for errors.Is classification.
var (
	ErrDuplicateGlobal  = errors.New("link: duplicate global symbol")
	ErrUnresolvedSymbol = errors.New("link: unresolved symbol")
	ErrNoPrograms       = errors.New("link: no programs to link")
)

// LinkError pairs a problem with the unit (and, where known, the source
// line within it) that caused it.
type LinkError struct {
	Unit int
	Line int
	Err  error
}

func (e *LinkError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unit %d, line %d: %s", e.Unit, e.Line, e.Err)
	}
	return fmt.Sprintf("unit %d: %s", e.Unit, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// LinkedProgram is the final, fully-resolved output of Link: one flat
// text/data image with a single global symbol table and a fixed entry
// point (spec.md §3, §4.4).
type LinkedProgram struct {
	Text  []isa.Word
	Data  []byte
	Entry uint32 // absolute address of the first instruction, i.e. the initial pc

	// TextBase/DataBase are the addresses Text[0]/Data[0] are loaded at
	// (internal/config.Segments' TextBegin/StaticBegin).
	TextBase uint32
	DataBase uint32

	// Globals is the union symbol table, addresses already absolute.
	Globals map[string]uint32

	// DebugMap maps an absolute text address to its originating unit and
	// source line, for diagnostics and the debug TUI.
	DebugMap map[uint32]SourceLoc
}

// SourceLoc names where one instruction came from.
type SourceLoc struct {
	Unit int
	Line int
}

// unitLayout records one input program's placement within the final
// image, needed to translate its local offsets into absolute addresses.
type unitLayout struct {
	program   *asm.Program
	textBase  uint32
	dataBase  uint32
}

// Link concatenates programs in order and resolves every relocation.
// cfg supplies the segment base addresses (nil means config.Default()).
// Every problem found is accumulated internally and joined into a single
// returned error (errors.Is/errors.As still classify individual causes),
// matching spec.md §6's "raises on link error" single-error contract.
func Link(programs []*asm.Program, cfg *config.Config) (*LinkedProgram, error) {
	linked, errs := link(programs, cfg)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return linked, nil
}

func link(programs []*asm.Program, cfg *config.Config) (*LinkedProgram, []error) {
	if len(programs) == 0 {
		return nil, []error{&LinkError{Err: ErrNoPrograms}}
	}
	cfg = config.OrDefault(cfg)
	textBegin, dataBegin := cfg.Segments.TextBegin, cfg.Segments.StaticBegin

	var errs []error
	layouts := make([]unitLayout, len(programs))
	textBase, dataBase := textBegin, dataBegin
	for i, p := range programs {
		layouts[i] = unitLayout{program: p, textBase: textBase, dataBase: dataBase}
		textBase += uint32(len(p.Text)) * 4
		dataBase += uint32(len(p.Data))
	}

	globals := map[string]uint32{}
	globalUnit := map[string]int{}
	for i, l := range layouts {
		for name, sym := range l.program.Symbols {
			if !sym.Global {
				continue
			}
			addr := absoluteAddr(l, sym)
			if _, dup := globals[name]; dup {
				errs = append(errs, &LinkError{Unit: i, Err: fmt.Errorf("%w: %s (also declared in unit %d)", ErrDuplicateGlobal, name, globalUnit[name])})
				continue
			}
			globals[name] = addr
			globalUnit[name] = i
		}
	}

	text := make([]isa.Word, 0, textBase/4)
	data := make([]byte, 0, dataBase)
	debugMap := map[uint32]SourceLoc{}
	for i, l := range layouts {
		for off, w := range l.program.Text {
			text = append(text, w)
			if line, ok := l.program.DebugMap[uint32(off)*4]; ok {
				debugMap[l.textBase+uint32(off)*4] = SourceLoc{Unit: i, Line: line}
			}
		}
		data = append(data, l.program.Data...)
	}

	for i, l := range layouts {
		for _, reloc := range l.program.Relocations {
			if err := resolveAndPatch(l, globals, text, data, reloc, textBegin); err != nil {
				errs = append(errs, &LinkError{Unit: i, Line: reloc.Line, Err: err})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	entry := textBegin
	if addr, ok := globals["main"]; ok {
		entry = addr
	} else {
		for _, l := range layouts {
			if l.program.Entry != "main" {
				continue
			}
			if sym, ok := l.program.Symbols["main"]; ok {
				entry = absoluteAddr(l, sym)
			}
			break
		}
	}

	return &LinkedProgram{
		Text: text, Data: data, Entry: entry,
		TextBase: textBegin, DataBase: dataBegin,
		Globals: globals, DebugMap: debugMap,
	}, nil
}

// absoluteAddr converts a unit-local symbol offset into a final address.
func absoluteAddr(l unitLayout, sym asm.Symbol) uint32 {
	if sym.Segment == asm.SegData {
		return l.dataBase + sym.Offset
	}
	return l.textBase + sym.Offset
}

// resolveAndPatch resolves one relocation's target address (local symbol
// table first, then the global table per spec.md §4.4) and patches the
// already-concatenated text/data image in place. textBegin is the
// address Text[0] is loaded at, needed to turn an absolute text address
// back into an index into the concatenated text slice.
func resolveAndPatch(l unitLayout, globals map[string]uint32, text []isa.Word, data []byte, reloc asm.Relocation, textBegin uint32) error {
	target, ok := resolveSymbol(l, globals, reloc.Label)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnresolvedSymbol, reloc.Label)
	}
	target = uint32(int32(target) + reloc.Addend)

	switch reloc.Kind {
	case asm.PatchDataWord:
		off := l.dataBase + reloc.Offset
		putWordLE(data, off, target)
		return nil
	}

	anchor := int32(l.textBase+reloc.Offset) + reloc.PCOffset
	diff := int32(target) - anchor
	idx := (l.textBase + reloc.Offset - textBegin) / 4
	w := text[idx]

	switch reloc.Kind {
	case asm.PatchBranch12:
		if diff%2 != 0 || !isa.FitsSigned(int64(diff), 13) {
			return fmt.Errorf("link: branch target %s out of range", reloc.Label)
		}
		text[idx] = w.WithImmB(diff)
	case asm.PatchJump20:
		if diff%2 != 0 || !isa.FitsSigned(int64(diff), 21) {
			return fmt.Errorf("link: jump target %s out of range", reloc.Label)
		}
		text[idx] = w.WithImmJ(diff)
	case asm.PatchAbsHi20:
		hi := (diff + 0x800) >> 12
		text[idx] = w.WithImmU(hi << 12)
	case asm.PatchAbsLo12:
		hi := (diff + 0x800) >> 12
		lo := diff - (hi << 12)
		text[idx] = w.WithImmI(lo)
	default:
		return fmt.Errorf("link: unhandled patch kind %s", reloc.Kind)
	}
	return nil
}

// resolveSymbol looks up a label in the originating unit's local table,
// then the union global table, per spec.md §4.4's resolution order.
func resolveSymbol(l unitLayout, globals map[string]uint32, label string) (uint32, bool) {
	if sym, ok := l.program.Symbols[label]; ok {
		return absoluteAddr(l, sym), true
	}
	if addr, ok := globals[label]; ok {
		return addr, true
	}
	return 0, false
}

func putWordLE(data []byte, off, v uint32) {
	data[off] = byte(v)
	data[off+1] = byte(v >> 8)
	data[off+2] = byte(v >> 16)
	data[off+3] = byte(v >> 24)
}
