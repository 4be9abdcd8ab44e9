package isa

// Format is the encoding format of an instruction, per spec.md §3.
type Format int

// The six RV32I encoding formats.
const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// Syntax names the operand layout a mnemonic is written with. It is
// consumed by pkg/asm (to know how to parse operand tokens into bit
// fields) and by Disassemble (to know how to render them back). It is a
// finer grain than Format: e.g. loads, stores, and jalr all share
// Format I/S but are written with different operand shapes.
type Syntax int

const (
	// SyntaxR is "mnemonic rd, rs1, rs2".
	SyntaxR Syntax = iota
	// SyntaxI is "mnemonic rd, rs1, imm" (arithmetic/logical immediate).
	SyntaxI
	// SyntaxShift is "mnemonic rd, rs1, shamt" (slli/srli/srai): a 5-bit
	// unsigned shift amount sharing the I-format encoding, distinguished
	// from SyntaxI only by its immediate's width and required funct7.
	SyntaxShift
	// SyntaxLoad is "mnemonic rd, imm(rs1)".
	SyntaxLoad
	// SyntaxStore is "mnemonic rs2, imm(rs1)".
	SyntaxStore
	// SyntaxBranch is "mnemonic rs1, rs2, label" with a pc-relative
	// label resolved to the B-format immediate.
	SyntaxBranch
	// SyntaxJALR is "mnemonic rd, imm(rs1)", sharing SyntaxLoad's
	// operand shape but Format I with opcode JALR.
	SyntaxJALR
	// SyntaxJAL is "mnemonic rd, label" with a pc-relative label
	// resolved to the J-format immediate.
	SyntaxJAL
	// SyntaxU is "mnemonic rd, imm" (U-format, 20-bit upper immediate).
	SyntaxU
	// SyntaxNone takes no operands (ecall, fence, fence.i).
	SyntaxNone
)
