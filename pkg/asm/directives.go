package asm

import (
	"encoding/binary"
	"strings"

	"github.com/rv32edu/toolchain/pkg/isa"
)

// applyDirective mutates st for one directive statement. Segment-affecting
// and data-emitting directives are handled here; .eqv/.equ substitution
// happens earlier, as a source-level preprocessing pass (preprocessEqv).
func applyDirective(st *asmState, s rawStmt) {
	if s.LexErr != nil {
		st.fail(s.Line, s.LexErr)
		return
	}
	switch s.Name {
	case "text":
		st.segment = SegText
	case "data":
		st.segment = SegData
	case "globl", "global":
		for _, name := range s.Args {
			st.globals[name] = true
		}
	case "byte":
		st.emitData(s.Line, s.Args, 1)
	case "half":
		st.emitData(s.Line, s.Args, 2)
	case "word":
		st.emitWords(s.Line, s.Args)
	case "ascii":
		st.emitString(s.Line, s.Args, false)
	case "asciiz", "string":
		st.emitString(s.Line, s.Args, true)
	case "space":
		st.emitSpace(s.Line, s.Args)
	case "align":
		st.emitAlign(s.Line, s.Args)
	default:
		st.fail(s.Line, newErr(s.Line, "%w: .%s", ErrUnknownDirective, s.Name))
	}
}

// emitData appends one or more scalar literals to the data segment as
// width-byte little-endian integers. Labels are not accepted here
// (only .word takes symbolic operands, since only a full 32-bit slot
// can hold an absolute address).
func (st *asmState) emitData(line int, args []string, width int) {
	if st.segment != SegData {
		st.fail(line, newErr(line, "%w: .byte/.half require the data segment", ErrDirectiveSegment))
		return
	}
	for _, a := range args {
		v, err := isa.ParseImmediate(a)
		if err != nil {
			st.fail(line, newErr(line, "%w: %s", ErrImmediateOutOfRange, err))
			continue
		}
		if !isa.FitsUnsigned(v, uint(width*8)) {
			st.fail(line, newErr(line, "%w: %s does not fit in %d bytes", ErrImmediateOutOfRange, a, width))
			continue
		}
		buf := make([]byte, width)
		switch width {
		case 1:
			buf[0] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(v))
		}
		st.data = append(st.data, buf...)
	}
}

// emitWords appends one 4-byte little-endian slot per argument. A
// numeric argument is stored directly; a bare label (optionally
// "label+N") is always deferred to the linker as a PatchDataWord
// relocation (SPEC_FULL.md §9) since only the linker knows final
// absolute addresses.
func (st *asmState) emitWords(line int, args []string) {
	if st.segment != SegData {
		st.fail(line, newErr(line, "%w: .word requires the data segment", ErrDirectiveSegment))
		return
	}
	for _, a := range args {
		off := uint32(len(st.data))
		st.data = append(st.data, 0, 0, 0, 0)
		if v, err := isa.ParseImmediate(a); err == nil {
			binary.LittleEndian.PutUint32(st.data[off:], uint32(v))
			continue
		}
		label, addend := splitLabelAddend(a)
		st.pending = append(st.pending, pendingRef{
			kind: PatchDataWord, segment: SegData, offset: off,
			label: label, addend: addend, line: line,
		})
	}
}

// emitString appends the decoded bytes of a .ascii/.asciiz/.string
// literal, optionally followed by a trailing NUL.
func (st *asmState) emitString(line int, args []string, nulTerminate bool) {
	if st.segment != SegData {
		st.fail(line, newErr(line, "%w: string directives require the data segment", ErrDirectiveSegment))
		return
	}
	if len(args) != 1 {
		st.fail(line, newErr(line, "%w: string directive expects 1 operand, got %d", ErrBadOperandCount, len(args)))
		return
	}
	decoded, err := unescapeString(args[0])
	if err != nil {
		st.fail(line, newErr(line, "%w", err))
		return
	}
	st.data = append(st.data, decoded...)
	if nulTerminate {
		st.data = append(st.data, 0)
	}
}

// emitSpace reserves n zeroed bytes.
func (st *asmState) emitSpace(line int, args []string) {
	if st.segment != SegData {
		st.fail(line, newErr(line, "%w: .space requires the data segment", ErrDirectiveSegment))
		return
	}
	if len(args) != 1 {
		st.fail(line, newErr(line, "%w: .space expects 1 operand, got %d", ErrBadOperandCount, len(args)))
		return
	}
	n, err := isa.ParseImmediate(args[0])
	if err != nil || n < 0 {
		st.fail(line, newErr(line, "%w: .space: %s", ErrImmediateOutOfRange, args[0]))
		return
	}
	st.data = append(st.data, make([]byte, n)...)
}

// emitAlign pads the current segment up to the next 2^n byte boundary.
func (st *asmState) emitAlign(line int, args []string) {
	if len(args) != 1 {
		st.fail(line, newErr(line, "%w: .align expects 1 operand, got %d", ErrBadOperandCount, len(args)))
		return
	}
	n, err := isa.ParseImmediate(args[0])
	if err != nil || n < 0 || n > 12 {
		st.fail(line, newErr(line, "%w: .align: %s", ErrImmediateOutOfRange, args[0]))
		return
	}
	boundary := uint32(1) << uint(n)
	switch st.segment {
	case SegText:
		for uint32(len(st.text)*4)%boundary != 0 {
			st.text = append(st.text, isa.Word(0))
		}
	case SegData:
		for uint32(len(st.data))%boundary != 0 {
			st.data = append(st.data, 0)
		}
	}
}

// splitLabelAddend parses the "label" or "label+N"/"label-N" forms
// accepted by .word.
func splitLabelAddend(tok string) (label string, addend int32) {
	for _, sep := range []string{"+", "-"} {
		if i := strings.LastIndex(tok, sep); i > 0 {
			if v, err := isa.ParseImmediate(tok[i:]); err == nil {
				return tok[:i], int32(v)
			}
		}
	}
	return tok, 0
}

// preprocessEqv resolves `.eqv name, value` / `.equ name, value`
// constant definitions by substituting name with value (as a whole
// token) in every following statement, the supplemented form of GNU
// as's .eqv (SPEC_FULL.md §9). Substitution is textual and one-shot:
// an .eqv does not see earlier .eqv expansions of its own value.
func preprocessEqv(stmts []rawStmt) []rawStmt {
	consts := map[string]string{}
	out := make([]rawStmt, 0, len(stmts))
	for _, s := range stmts {
		if s.IsDirective && (s.Name == "eqv" || s.Name == "equ") && len(s.Args) == 2 {
			consts[s.Args[0]] = s.Args[1]
			continue
		}
		for i, a := range s.Args {
			if v, ok := consts[a]; ok {
				s.Args[i] = v
			}
		}
		out = append(out, s)
	}
	return out
}
