package asm

import (
	"strings"

	"github.com/rv32edu/toolchain/pkg/isa"
)

// encodeInstr encodes one already-pseudo-expanded instruction, appending
// its isa.Word to st.text and, if any operand needs a label resolved
// later, a pendingRef describing the patch.
func encodeInstr(st *asmState, r realInstr) {
	if st.segment != SegText {
		st.fail(r.Line, newErr(r.Line, "%w: instructions require the text segment", ErrDirectiveSegment))
		return
	}
	d, ok := isa.Lookup(r.Mnemonic)
	if !ok {
		st.fail(r.Line, newErr(r.Line, "%w: %s", ErrUnknownMnemonic, r.Mnemonic))
		return
	}
	offset := uint32(len(st.text)) * 4
	w, ref, err := encodeOperands(d, r, offset)
	if err != nil {
		st.fail(r.Line, err)
		st.text = append(st.text, isa.Word(0))
		return
	}
	st.text = append(st.text, w)
	if ref != nil {
		st.pending = append(st.pending, *ref)
	}
	if st.debugMap != nil {
		st.debugMap[offset] = r.Line
	}
}

// encodeOperands builds the instruction word for d's syntax, returning a
// pendingRef when an operand is a label instead of a resolved immediate.
func encodeOperands(d *isa.Descriptor, r realInstr, offset uint32) (isa.Word, *pendingRef, error) {
	a := r.Args
	w := d.Encode()

	switch d.Syntax {
	case isa.SyntaxR:
		if len(a) != 3 {
			return 0, nil, newErr(r.Line, "%w: %s expects 3 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rd, rs1, rs2, err := regs3(r.Line, a[0], a[1], a[2])
		if err != nil {
			return 0, nil, err
		}
		return w.WithRD(rd).WithRS1(rs1).WithRS2(rs2), nil, nil

	case isa.SyntaxI:
		if len(a) != 3 {
			return 0, nil, newErr(r.Line, "%w: %s expects 3 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rd, rs1, err := regs2(r.Line, a[0], a[1])
		if err != nil {
			return 0, nil, err
		}
		w = w.WithRD(rd).WithRS1(rs1)
		return applyImmOrHiLo(r.Line, w, a[2], offset, PatchAbsLo12, -4)

	case isa.SyntaxShift:
		if len(a) != 3 {
			return 0, nil, newErr(r.Line, "%w: %s expects 3 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rd, rs1, err := regs2(r.Line, a[0], a[1])
		if err != nil {
			return 0, nil, err
		}
		shamt, err := isa.ParseImmediate(a[2])
		if err != nil || shamt < 0 || shamt > 31 {
			return 0, nil, newErr(r.Line, "%w: shamt %s", ErrImmediateOutOfRange, a[2])
		}
		return w.WithRD(rd).WithRS1(rs1).WithRS2(uint32(shamt)), nil, nil

	case isa.SyntaxLoad, isa.SyntaxJALR:
		rd, rs1, immTok, err := regImmForm(r.Line, a)
		if err != nil {
			return 0, nil, err
		}
		w = w.WithRD(rd).WithRS1(rs1)
		return applyImmOrHiLo(r.Line, w, immTok, offset, PatchAbsLo12, -4)

	case isa.SyntaxStore:
		if len(a) < 2 {
			return 0, nil, newErr(r.Line, "%w: %s expects at least 2 operands", ErrBadOperandCount, r.Mnemonic)
		}
		rs2Tok := a[0]
		rs1, immTok, err := parseMemOperand(r.Line, a[1:])
		if err != nil {
			return 0, nil, err
		}
		rs2, err := isa.ParseRegister(rs2Tok)
		if err != nil {
			return 0, nil, newErr(r.Line, "%w: %s", ErrBadOperandCount, err)
		}
		imm, err := isa.ParseImmediate(immTok)
		if err != nil || !isa.FitsSigned(imm, 12) {
			return 0, nil, newErr(r.Line, "%w: %s", ErrImmediateOutOfRange, immTok)
		}
		return w.WithRS1(rs1).WithRS2(rs2).WithImmS(int32(imm)), nil, nil

	case isa.SyntaxBranch:
		if len(a) != 3 {
			return 0, nil, newErr(r.Line, "%w: %s expects 3 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rs1, rs2, err := regs2(r.Line, a[0], a[1])
		if err != nil {
			return 0, nil, err
		}
		w = w.WithRS1(rs1).WithRS2(rs2)
		if imm, err := isa.ParseImmediate(a[2]); err == nil {
			return w.WithImmB(int32(imm)), nil, nil
		}
		return w, &pendingRef{kind: PatchBranch12, segment: SegText, offset: offset, label: a[2], line: r.Line}, nil

	case isa.SyntaxJAL:
		if len(a) != 2 {
			return 0, nil, newErr(r.Line, "%w: %s expects 2 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rd, err := isa.ParseRegister(a[0])
		if err != nil {
			return 0, nil, newErr(r.Line, "%w: %s", ErrBadOperandCount, err)
		}
		w = w.WithRD(rd)
		if imm, err := isa.ParseImmediate(a[1]); err == nil {
			return w.WithImmJ(int32(imm)), nil, nil
		}
		return w, &pendingRef{kind: PatchJump20, segment: SegText, offset: offset, label: a[1], line: r.Line}, nil

	case isa.SyntaxU:
		if len(a) != 2 {
			return 0, nil, newErr(r.Line, "%w: %s expects 2 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		rd, err := isa.ParseRegister(a[0])
		if err != nil {
			return 0, nil, newErr(r.Line, "%w: %s", ErrBadOperandCount, err)
		}
		w = w.WithRD(rd)
		if label, ok := strings.CutSuffix(a[1], "@hi"); ok {
			return w, &pendingRef{kind: PatchAbsHi20, segment: SegText, offset: offset, label: label, line: r.Line}, nil
		}
		v, err := isa.ParseImmediate(a[1])
		if err != nil || !isa.FitsUnsigned(v, 20) {
			return 0, nil, newErr(r.Line, "%w: %s", ErrImmediateOutOfRange, a[1])
		}
		return w.WithImmU(int32(v) << 12), nil, nil

	case isa.SyntaxNone:
		if len(a) != 0 {
			return 0, nil, newErr(r.Line, "%w: %s expects 0 operands, got %d", ErrBadOperandCount, r.Mnemonic, len(a))
		}
		return w, nil, nil

	default:
		return 0, nil, newErr(r.Line, "asm: unhandled syntax for %s", r.Mnemonic)
	}
}

// applyImmOrHiLo resolves an I-format immediate operand that may be a
// plain number or a "label@lo" token from la/call expansion. A bare label
// is rejected as an out-of-range immediate.
func applyImmOrHiLo(line int, w isa.Word, tok string, offset uint32, loKind PatchKind, loPCOffset int32) (isa.Word, *pendingRef, error) {
	if label, ok := strings.CutSuffix(tok, "@lo"); ok {
		return w, &pendingRef{kind: loKind, segment: SegText, offset: offset, pcAnchorDelta: loPCOffset, label: label, line: line}, nil
	}
	v, err := isa.ParseImmediate(tok)
	if err != nil || !isa.FitsSigned(v, 12) {
		return 0, nil, newErr(line, "%w: %s", ErrImmediateOutOfRange, tok)
	}
	return w.WithImmI(int32(v)), nil, nil
}

// regImmForm accepts both the canonical "rd, imm(rs1)" addressing form
// and the 3-operand "rd, rs1, imm" form produced by jalr's pseudo
// expansions.
func regImmForm(line int, a []string) (rd, rs1 uint32, immTok string, err error) {
	if len(a) < 2 {
		return 0, 0, "", newErr(line, "%w: expects at least 2 operands, got %d", ErrBadOperandCount, len(a))
	}
	rd, err = isa.ParseRegister(a[0])
	if err != nil {
		return 0, 0, "", newErr(line, "%w: %s", ErrBadOperandCount, err)
	}
	rs1, immTok, err = parseMemOperand(line, a[1:])
	return rd, rs1, immTok, err
}

// parseMemOperand accepts either a single "imm(rs1)" token or the
// explicit "rs1, imm" two-token form.
func parseMemOperand(line int, a []string) (rs1 uint32, immTok string, err error) {
	if len(a) == 1 && strings.Contains(a[0], "(") {
		open := strings.IndexByte(a[0], '(')
		shut := strings.IndexByte(a[0], ')')
		if shut <= open {
			return 0, "", newErr(line, "%w: malformed offset(reg) operand %q", ErrBadOperandCount, a[0])
		}
		immTok = a[0][:open]
		if immTok == "" {
			immTok = "0"
		}
		rs1, err = isa.ParseRegister(a[0][open+1 : shut])
		if err != nil {
			return 0, "", newErr(line, "%w: %s", ErrBadOperandCount, err)
		}
		return rs1, immTok, nil
	}
	if len(a) == 2 {
		rs1, err = isa.ParseRegister(a[0])
		if err != nil {
			return 0, "", newErr(line, "%w: %s", ErrBadOperandCount, err)
		}
		return rs1, a[1], nil
	}
	return 0, "", newErr(line, "%w: malformed memory operand", ErrBadOperandCount)
}

func regs2(line int, a, b string) (uint32, uint32, error) {
	ra, err := isa.ParseRegister(a)
	if err != nil {
		return 0, 0, newErr(line, "%w: %s", ErrBadOperandCount, err)
	}
	rb, err := isa.ParseRegister(b)
	if err != nil {
		return 0, 0, newErr(line, "%w: %s", ErrBadOperandCount, err)
	}
	return ra, rb, nil
}

func regs3(line int, a, b, c string) (uint32, uint32, uint32, error) {
	ra, rb, err := regs2(line, a, b)
	if err != nil {
		return 0, 0, 0, err
	}
	rc, err := isa.ParseRegister(c)
	if err != nil {
		return 0, 0, 0, newErr(line, "%w: %s", ErrBadOperandCount, err)
	}
	return ra, rb, rc, nil
}
