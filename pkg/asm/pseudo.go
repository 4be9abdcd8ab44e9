package asm

import (
	"fmt"

	"github.com/rv32edu/toolchain/pkg/isa"
)

// realInstr is one real (non-pseudo) instruction statement produced by
// pseudoinstruction expansion, ready for encoding.
type realInstr struct {
	Line     int
	Mnemonic string
	Args     []string
}

// expandPseudo rewrites one statement into one or more real instructions,
// per the minimum pseudoinstruction set in spec.md §4.3. Mnemonics not
// recognized as pseudos pass through unchanged (encode validates them
// against the isa table).
func expandPseudo(line int, mnemonic string, args []string) ([]realInstr, error) {
	r := func(m string, a ...string) realInstr { return realInstr{Line: line, Mnemonic: m, Args: a} }

	switch mnemonic {
	case "nop":
		return need(line, mnemonic, args, 0, func() []realInstr {
			return []realInstr{r("addi", "x0", "x0", "0")}
		})
	case "mv":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("addi", args[0], args[1], "0")}
		})
	case "li":
		if len(args) != 2 {
			return nil, newErr(line, "%w: %s expects %d operands, got %d", ErrBadOperandCount, mnemonic, 2, len(args))
		}
		return expandLi(line, args[0], args[1])
	case "la":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{
				r("auipc", args[0], args[1]+"@hi"),
				r("addi", args[0], args[0], args[1]+"@lo"),
			}
		})
	case "j":
		return need(line, mnemonic, args, 1, func() []realInstr {
			return []realInstr{r("jal", "x0", args[0])}
		})
	case "jal":
		if len(args) == 1 {
			return []realInstr{r("jal", "x1", args[0])}, nil
		}
		return []realInstr{r("jal", args...)}, nil
	case "jr":
		return need(line, mnemonic, args, 1, func() []realInstr {
			return []realInstr{r("jalr", "x0", args[0], "0")}
		})
	case "jalr":
		if len(args) == 1 {
			return []realInstr{r("jalr", "x1", args[0], "0")}, nil
		}
		return []realInstr{r("jalr", args...)}, nil
	case "ret":
		return need(line, mnemonic, args, 0, func() []realInstr {
			return []realInstr{r("jalr", "x0", "x1", "0")}
		})
	case "call":
		return need(line, mnemonic, args, 1, func() []realInstr {
			return []realInstr{
				r("auipc", "x1", args[0]+"@hi"),
				r("jalr", "x1", "x1", args[0]+"@lo"),
			}
		})
	case "not":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("xori", args[0], args[1], "-1")}
		})
	case "neg":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("sub", args[0], "x0", args[1])}
		})
	case "seqz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("sltiu", args[0], args[1], "1")}
		})
	case "snez":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("sltu", args[0], "x0", args[1])}
		})
	case "sltz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("slt", args[0], args[1], "x0")}
		})
	case "sgtz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("slt", args[0], "x0", args[1])}
		})
	case "beqz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("beq", args[0], "x0", args[1])}
		})
	case "bnez":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("bne", args[0], "x0", args[1])}
		})
	case "blez":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("bge", "x0", args[0], args[1])}
		})
	case "bgez":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("bge", args[0], "x0", args[1])}
		})
	case "bltz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("blt", args[0], "x0", args[1])}
		})
	case "bgtz":
		return need(line, mnemonic, args, 2, func() []realInstr {
			return []realInstr{r("blt", "x0", args[0], args[1])}
		})
	case "ble":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{r("bge", args[1], args[0], args[2])}
		})
	case "bgt":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{r("blt", args[1], args[0], args[2])}
		})
	case "bleu":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{r("bgeu", args[1], args[0], args[2])}
		})
	case "bgtu":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{r("bltu", args[1], args[0], args[2])}
		})
	case "sgt":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{r("slt", args[0], args[2], args[1])}
		})
	case "sge":
		return need(line, mnemonic, args, 3, func() []realInstr {
			return []realInstr{
				r("slt", args[0], args[1], args[2]),
				r("xori", args[0], args[0], "1"),
			}
		})
	default:
		return []realInstr{r(mnemonic, args...)}, nil
	}
}

// need validates the operand count before calling build, matching the
// assembler-error "wrong operand count" case from spec.md §4.3. An
// optional alt callback overrides build for pseudos whose expansion can
// itself fail.
func need(line int, mnemonic string, args []string, n int, build func() []realInstr, alt ...func() ([]realInstr, error)) ([]realInstr, error) {
	if len(args) != n {
		return nil, newErr(line, "%w: %s expects %d operands, got %d", ErrBadOperandCount, mnemonic, n, len(args))
	}
	if len(alt) > 0 {
		return alt[0]()
	}
	return build(), nil
}

// expandLi expands `li rd, imm` per spec.md §4.3: a single addi if imm
// fits a 12-bit signed field, else lui+addi with the upper value rounded
// to compensate for addi's sign-extended lower half.
func expandLi(line int, rd, immTok string) ([]realInstr, error) {
	imm, err := isa.ParseImmediate(immTok)
	if err != nil {
		return nil, newErr(line, "%w: %s", ErrImmediateOutOfRange, err)
	}
	r := func(m string, a ...string) realInstr { return realInstr{Line: line, Mnemonic: m, Args: a} }
	if fitsSigned12(imm) {
		return []realInstr{r("addi", rd, "x0", fmt.Sprintf("%d", imm))}, nil
	}
	upper, lower := splitHiLo(imm)
	return []realInstr{
		r("lui", rd, fmt.Sprintf("%d", upper)),
		r("addi", rd, rd, fmt.Sprintf("%d", lower)),
	}, nil
}

func fitsSigned12(v int64) bool {
	return v >= -2048 && v <= 2047
}

// splitHiLo rounds v into a (20-bit upper, 12-bit signed lower) pair such
// that upper<<12 + lower == v modulo 2^32, the standard RISC-V hi/lo
// split. upper is returned as its unsigned 20-bit field value.
func splitHiLo(v int64) (upper int64, lower int64) {
	upper = (v + 0x800) >> 12
	lower = v - (upper << 12)
	return upper & 0xfffff, lower
}
