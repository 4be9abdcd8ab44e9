package isa

import "fmt"

// Disassemble decodes w and renders it as valid assembly text. Labels
// are never recovered — branch/jump targets are rendered as signed
// pc-relative byte offsets, matching what a reassembly of the output
// would need to reproduce the same bits (spec.md §8, invariant 4).
func Disassemble(w Word) string {
	d, err := Dispatch(w)
	if err != nil {
		return fmt.Sprintf("<unknown instruction: %#08x>", uint32(w))
	}
	return DisassembleWith(d, w)
}

// DisassembleWith renders w using the operand syntax of a specific,
// already-dispatched descriptor.
func DisassembleWith(d *Descriptor, w Word) string {
	switch d.Syntax {
	case SyntaxR:
		return fmt.Sprintf("%s %s, %s, %s", d.Mnemonic, reg(w.RD()), reg(w.RS1()), reg(w.RS2()))
	case SyntaxI:
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, reg(w.RD()), reg(w.RS1()), w.ImmI())
	case SyntaxShift:
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, reg(w.RD()), reg(w.RS1()), w.RS2())
	case SyntaxLoad, SyntaxJALR:
		return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, reg(w.RD()), w.ImmI(), reg(w.RS1()))
	case SyntaxStore:
		return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, reg(w.RS2()), w.ImmS(), reg(w.RS1()))
	case SyntaxBranch:
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, reg(w.RS1()), reg(w.RS2()), w.ImmB())
	case SyntaxJAL:
		return fmt.Sprintf("%s %s, %d", d.Mnemonic, reg(w.RD()), w.ImmJ())
	case SyntaxU:
		return fmt.Sprintf("%s %s, %d", d.Mnemonic, reg(w.RD()), uint32(w.ImmU())>>12)
	case SyntaxNone:
		return d.Mnemonic
	default:
		return fmt.Sprintf("<unhandled syntax for %s>", d.Mnemonic)
	}
}

func reg(i uint32) string {
	return RegisterName(i)
}
