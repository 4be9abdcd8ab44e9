package asm

import (
	"github.com/rv32edu/toolchain/pkg/isa"
)

// pendingRef is an operand resolved against the symbol table only after
// the whole unit has been scanned once (pass 2), since a label may be
// defined after its first use.
type pendingRef struct {
	kind PatchKind
	// segment is the segment the patch target itself lives in (always
	// SegText except for PatchDataWord).
	segment Segment
	offset  uint32 // local byte offset of the patch target within segment
	// pcAnchorDelta is added to offset to find the pc-relative anchor
	// address (0 for self-anchored patches, -4 for the lo12 half of a
	// hi/lo pair, whose anchor is the preceding auipc).
	pcAnchorDelta int32
	label         string
	addend        int32
	line          int
}

// asmState accumulates one translation unit's pass-1 output: emitted
// words/bytes, the symbol table, and every reference still needing
// label resolution.
type asmState struct {
	segment  Segment
	text     []isa.Word
	data     []byte
	symbols  map[string]Symbol
	globals  map[string]bool
	pending  []pendingRef
	debugMap map[uint32]int
	errs     []error
}

func (st *asmState) fail(line int, err error) {
	if _, ok := err.(*AssembleError); ok {
		st.errs = append(st.errs, err)
		return
	}
	st.errs = append(st.errs, newErr(line, "%w", err))
}

func (st *asmState) defineLabel(name string, line int) {
	if _, exists := st.symbols[name]; exists {
		st.fail(line, newErr(line, "%w: %s", ErrDuplicateLabel, name))
		return
	}
	var off uint32
	if st.segment == SegText {
		off = uint32(len(st.text)) * 4
	} else {
		off = uint32(len(st.data))
	}
	st.symbols[name] = Symbol{Segment: st.segment, Offset: off, Global: st.globals[name]}
}

// Assemble lexes, expands, and encodes one translation unit, returning
// its Program or the full list of problems found (spec.md §4.3's "every
// problem it finds is accumulated, not just the first").
func Assemble(source string) (*Program, []error) {
	st := &asmState{
		segment:  SegText,
		symbols:  map[string]Symbol{},
		globals:  map[string]bool{},
		debugMap: map[uint32]int{},
	}

	stmts := preprocessEqv(lex(source))

	for _, s := range stmts {
		if s.Label != "" {
			st.defineLabel(s.Label, s.Line)
		}
		switch {
		case s.IsDirective:
			applyDirective(st, s)
		case s.Name == "":
			// label-only line, nothing further to do
		default:
			insts, err := expandPseudo(s.Line, s.Name, s.Args)
			if err != nil {
				st.errs = append(st.errs, err)
				continue
			}
			for _, r := range insts {
				encodeInstr(st, r)
			}
		}
	}

	for name := range st.globals {
		if sym, ok := st.symbols[name]; ok {
			sym.Global = true
			st.symbols[name] = sym
		}
	}

	relocations := st.resolvePending()

	if len(st.errs) > 0 {
		return nil, st.errs
	}

	entry := ""
	if _, ok := st.symbols["main"]; ok {
		entry = "main"
	}

	return &Program{
		Text:        st.text,
		Data:        st.data,
		Symbols:     st.symbols,
		Relocations: relocations,
		DebugMap:    st.debugMap,
		Entry:       entry,
	}, nil
}

// resolvePending walks every pendingRef against the now-complete symbol
// table. A reference patches locally when its label resolves to the
// same segment as the patch site, since offsets within one segment
// survive linking unchanged; otherwise it becomes a Relocation for the
// linker, which alone knows the final inter-segment and inter-unit
// gaps. PatchDataWord is always deferred (spec.md §9): a data word
// holds an absolute address, which no unit can compute on its own.
func (st *asmState) resolvePending() []Relocation {
	var relocs []Relocation
	for _, p := range st.pending {
		if p.kind == PatchDataWord {
			relocs = append(relocs, Relocation{
				Segment: p.segment, Offset: p.offset, Label: p.label,
				Addend: p.addend, Kind: p.kind, Line: p.line,
			})
			continue
		}
		sym, ok := st.symbols[p.label]
		switch {
		case !ok && p.kind == PatchBranch12:
			st.fail(p.line, newErr(p.line, "%w: %s", ErrUndefinedLocalLabel, p.label))
		case ok && p.kind == PatchBranch12 && sym.Segment != SegText:
			st.fail(p.line, newErr(p.line, "%w: %s", ErrTargetNotInText, p.label))
		case ok && sym.Segment == p.segment:
			st.patchLocal(p, sym)
		default:
			relocs = append(relocs, Relocation{
				Segment: p.segment, Offset: p.offset, PCOffset: p.pcAnchorDelta,
				Label: p.label, Kind: p.kind, Line: p.line,
			})
		}
	}
	return relocs
}

// patchLocal resolves one reference directly into the already-emitted
// instruction word, using the base-invariant pc-relative diff between
// the patch site's anchor and the symbol's local offset.
func (st *asmState) patchLocal(p pendingRef, sym Symbol) {
	anchor := int32(p.offset) + p.pcAnchorDelta
	diff := int32(sym.Offset) - anchor
	idx := p.offset / 4
	w := st.text[idx]
	switch p.kind {
	case PatchBranch12:
		if diff%2 != 0 || !isa.FitsSigned(int64(diff), 13) {
			st.fail(p.line, newErr(p.line, "%w: branch target %s out of range", ErrImmediateOutOfRange, p.label))
			return
		}
		st.text[idx] = w.WithImmB(diff)
	case PatchJump20:
		if diff%2 != 0 || !isa.FitsSigned(int64(diff), 21) {
			st.fail(p.line, newErr(p.line, "%w: jump target %s out of range", ErrImmediateOutOfRange, p.label))
			return
		}
		st.text[idx] = w.WithImmJ(diff)
	case PatchAbsHi20:
		hi, _ := splitHiLo(int64(diff))
		st.text[idx] = w.WithImmU(int32(hi) << 12)
	case PatchAbsLo12:
		_, lo := splitHiLo(int64(diff))
		st.text[idx] = w.WithImmI(int32(lo))
	}
}
