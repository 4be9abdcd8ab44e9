package isa

// Opcode values (the 7-bit opcode field), one per RV32I instruction group.
const (
	opLUI     = 0b0110111
	opAUIPC   = 0b0010111
	opJAL     = 0b1101111
	opJALR    = 0b1100111
	opBranch  = 0b1100011
	opLoad    = 0b0000011
	opStore   = 0b0100011
	opOpImm   = 0b0010011
	opOp      = 0b0110011
	opMiscMem = 0b0001111
	opSystem  = 0b1110011
)

// funct7 values distinguishing sub/sra/srai from their additive/logical
// siblings; all other R/I-arithmetic instructions use funct7 == 0.
const funct7Alt = 0b0100000

func maskMatchOpcode(op uint32) (mask, match uint32) {
	return fieldOpcode.mask(), op
}

func maskMatchOpFunct3(op, f3 uint32) (mask, match uint32) {
	mask = fieldOpcode.mask() | fieldFunct3.mask()<<fieldFunct3.lo
	match = op | f3<<fieldFunct3.lo
	return
}

func maskMatchOpFunct3Funct7(op, f3, f7 uint32) (mask, match uint32) {
	mask = fieldOpcode.mask() | fieldFunct3.mask()<<fieldFunct3.lo | fieldFunct7.mask()<<fieldFunct7.lo
	match = op | f3<<fieldFunct3.lo | f7<<fieldFunct7.lo
	return
}

// Descriptor is an immutable entry in the process-wide RV32I instruction
// table: its mnemonic, encoding format, operand syntax, the dispatch
// predicate that recognizes it, and its semantic action.
//
// The table is a closed, data-driven array rather than one type per
// instruction (spec.md §9's REDESIGN FLAG): adding a mnemonic means
// adding a row, never a new Go type.
type Descriptor struct {
	Mnemonic string
	Format   Format
	Syntax   Syntax

	// mask/match: a word w is recognized by this descriptor iff
	// w&mask == match. Constraints are checked most-specific-first by
	// construction (opcode, then funct3, then funct7), matching
	// spec.md §4.1's dispatch-order requirement; Table is built once and
	// never reordered at runtime.
	mask, match uint32

	// WritesPC is true when Exec fully owns the pc update (branches,
	// jal, jalr). Every other instruction advances pc by 4 automatically
	// once Exec returns, per spec.md §4.1 ("All instructions that do not
	// explicitly write pc advance pc by 4").
	WritesPC bool

	Exec func(w Word, p Processor) error
}

// Table is the process-wide, immutable RV32I descriptor table. It is
// built once at package initialization (spec.md §3's "ISA descriptors
// live for the whole process").
var Table []*Descriptor

func init() {
	Table = []*Descriptor{
		rDesc("add", opOp, 0b000, 0, func(a, b uint32) uint32 { return a + b }),
		rDesc("sub", opOp, 0b000, funct7Alt, func(a, b uint32) uint32 { return a - b }),
		rDesc("sll", opOp, 0b001, 0, func(a, b uint32) uint32 { return a << (b & 0x1f) }),
		rDesc("slt", opOp, 0b010, 0, func(a, b uint32) uint32 { return boolToWord(int32(a) < int32(b)) }),
		rDesc("sltu", opOp, 0b011, 0, func(a, b uint32) uint32 { return boolToWord(a < b) }),
		rDesc("xor", opOp, 0b100, 0, func(a, b uint32) uint32 { return a ^ b }),
		rDesc("srl", opOp, 0b101, 0, func(a, b uint32) uint32 { return a >> (b & 0x1f) }),
		rDesc("sra", opOp, 0b101, funct7Alt, func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1f)) }),
		rDesc("or", opOp, 0b110, 0, func(a, b uint32) uint32 { return a | b }),
		rDesc("and", opOp, 0b111, 0, func(a, b uint32) uint32 { return a & b }),

		iArithDesc("addi", 0b000, func(a uint32, imm int32) uint32 { return a + uint32(imm) }),
		iArithDesc("slti", 0b010, func(a uint32, imm int32) uint32 { return boolToWord(int32(a) < imm) }),
		iArithDesc("sltiu", 0b011, func(a uint32, imm int32) uint32 { return boolToWord(a < uint32(imm)) }),
		iArithDesc("xori", 0b100, func(a uint32, imm int32) uint32 { return a ^ uint32(imm) }),
		iArithDesc("ori", 0b110, func(a uint32, imm int32) uint32 { return a | uint32(imm) }),
		iArithDesc("andi", 0b111, func(a uint32, imm int32) uint32 { return a & uint32(imm) }),

		shiftDesc("slli", 0b001, 0, func(a, shamt uint32) uint32 { return a << shamt }),
		shiftDesc("srli", 0b101, 0, func(a, shamt uint32) uint32 { return a >> shamt }),
		shiftDesc("srai", 0b101, funct7Alt, func(a, shamt uint32) uint32 { return uint32(int32(a) >> shamt) }),

		loadDesc("lb", 0b000), loadDesc("lh", 0b001), loadDesc("lw", 0b010),
		loadDesc("lbu", 0b100), loadDesc("lhu", 0b101),

		storeDesc("sb", 0b000), storeDesc("sh", 0b001), storeDesc("sw", 0b010),

		branchDesc("beq", 0b000, func(a, b uint32) bool { return a == b }),
		branchDesc("bne", 0b001, func(a, b uint32) bool { return a != b }),
		branchDesc("blt", 0b100, func(a, b uint32) bool { return int32(a) < int32(b) }),
		branchDesc("bge", 0b101, func(a, b uint32) bool { return int32(a) >= int32(b) }),
		branchDesc("bltu", 0b110, func(a, b uint32) bool { return a < b }),
		branchDesc("bgeu", 0b111, func(a, b uint32) bool { return a >= b }),

		jalDesc(), jalrDesc(),
		luiDesc(), auipcDesc(),
		fenceDesc("fence", 0b000),
		fenceDesc("fence.i", 0b001),
		ecallDesc(),
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func rDesc(name string, op, f3, f7 uint32, fn func(a, b uint32) uint32) *Descriptor {
	mask, match := maskMatchOpFunct3Funct7(op, f3, f7)
	return &Descriptor{
		Mnemonic: name, Format: FormatR, Syntax: SyntaxR,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			p.SetReg(w.RD(), fn(p.Reg(w.RS1()), p.Reg(w.RS2())))
			return nil
		},
	}
}

func iArithDesc(name string, f3 uint32, fn func(a uint32, imm int32) uint32) *Descriptor {
	mask, match := maskMatchOpFunct3(opOpImm, f3)
	return &Descriptor{
		Mnemonic: name, Format: FormatI, Syntax: SyntaxI,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			p.SetReg(w.RD(), fn(p.Reg(w.RS1()), w.ImmI()))
			return nil
		},
	}
}

func shiftDesc(name string, f3, f7 uint32, fn func(a, shamt uint32) uint32) *Descriptor {
	mask, match := maskMatchOpFunct3Funct7(opOpImm, f3, f7)
	return &Descriptor{
		Mnemonic: name, Format: FormatI, Syntax: SyntaxShift,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			shamt := w.RS2() // shamt occupies the rs2 bit position (low 5 bits of imm)
			p.SetReg(w.RD(), fn(p.Reg(w.RS1()), shamt))
			return nil
		},
	}
}

func loadDesc(name string, f3 uint32) *Descriptor {
	mask, match := maskMatchOpFunct3(opLoad, f3)
	return &Descriptor{
		Mnemonic: name, Format: FormatI, Syntax: SyntaxLoad,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			addr := uint32(int32(p.Reg(w.RS1())) + w.ImmI())
			var v uint32
			switch name {
			case "lb":
				b, err := p.LoadByte(addr)
				if err != nil {
					return err
				}
				v = uint32(int32(int8(b)))
			case "lbu":
				b, err := p.LoadByte(addr)
				if err != nil {
					return err
				}
				v = uint32(b)
			case "lh":
				h, err := p.LoadHalf(addr)
				if err != nil {
					return err
				}
				v = uint32(int32(int16(h)))
			case "lhu":
				h, err := p.LoadHalf(addr)
				if err != nil {
					return err
				}
				v = uint32(h)
			case "lw":
				word, err := p.LoadWord(addr)
				if err != nil {
					return err
				}
				v = word
			}
			p.SetReg(w.RD(), v)
			return nil
		},
	}
}

func storeDesc(name string, f3 uint32) *Descriptor {
	mask, match := maskMatchOpFunct3(opStore, f3)
	return &Descriptor{
		Mnemonic: name, Format: FormatS, Syntax: SyntaxStore,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			addr := uint32(int32(p.Reg(w.RS1())) + w.ImmS())
			rs2 := p.Reg(w.RS2())
			switch name {
			case "sb":
				return p.StoreByte(addr, byte(rs2))
			case "sh":
				return p.StoreHalf(addr, uint16(rs2))
			case "sw":
				return p.StoreWord(addr, rs2)
			}
			return nil
		},
	}
}

func branchDesc(name string, f3 uint32, cond func(a, b uint32) bool) *Descriptor {
	mask, match := maskMatchOpFunct3(opBranch, f3)
	return &Descriptor{
		Mnemonic: name, Format: FormatB, Syntax: SyntaxBranch,
		mask: mask, match: match, WritesPC: true,
		Exec: func(w Word, p Processor) error {
			pc := p.PC()
			if cond(p.Reg(w.RS1()), p.Reg(w.RS2())) {
				p.SetPC(uint32(int32(pc) + w.ImmB()))
			} else {
				p.SetPC(pc + 4)
			}
			return nil
		},
	}
}

func jalDesc() *Descriptor {
	mask, match := maskMatchOpcode(opJAL)
	return &Descriptor{
		Mnemonic: "jal", Format: FormatJ, Syntax: SyntaxJAL,
		mask: mask, match: match, WritesPC: true,
		Exec: func(w Word, p Processor) error {
			pc := p.PC()
			p.SetReg(w.RD(), pc+4)
			p.SetPC(uint32(int32(pc) + w.ImmJ()))
			return nil
		},
	}
}

func jalrDesc() *Descriptor {
	mask, match := maskMatchOpFunct3(opJALR, 0b000)
	return &Descriptor{
		Mnemonic: "jalr", Format: FormatI, Syntax: SyntaxJALR,
		mask: mask, match: match, WritesPC: true,
		Exec: func(w Word, p Processor) error {
			pc := p.PC()
			target := uint32(int32(p.Reg(w.RS1()))+w.ImmI()) &^ 1
			p.SetReg(w.RD(), pc+4)
			p.SetPC(target)
			return nil
		},
	}
}

func luiDesc() *Descriptor {
	mask, match := maskMatchOpcode(opLUI)
	return &Descriptor{
		Mnemonic: "lui", Format: FormatU, Syntax: SyntaxU,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			p.SetReg(w.RD(), uint32(w.ImmU()))
			return nil
		},
	}
}

func auipcDesc() *Descriptor {
	mask, match := maskMatchOpcode(opAUIPC)
	return &Descriptor{
		Mnemonic: "auipc", Format: FormatU, Syntax: SyntaxU,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error {
			p.SetReg(w.RD(), p.PC()+uint32(w.ImmU()))
			return nil
		},
	}
}

func fenceDesc(name string, f3 uint32) *Descriptor {
	mask, match := maskMatchOpFunct3(opMiscMem, f3)
	return &Descriptor{
		Mnemonic: name, Format: FormatI, Syntax: SyntaxNone,
		mask: mask, match: match,
		Exec: func(w Word, p Processor) error { return nil },
	}
}

func ecallDesc() *Descriptor {
	// ecall requires rd==0, rs1==0, imm==0 in addition to opcode/funct3,
	// so that it is distinguishable from a future ebreak (imm==1), which
	// this toolchain does not implement.
	mask := fieldOpcode.mask() | fieldFunct3.mask()<<fieldFunct3.lo |
		fieldRD.mask()<<fieldRD.lo | fieldRS1.mask()<<fieldRS1.lo | uint32(0xfff)<<20
	match := uint32(opSystem)
	return &Descriptor{
		Mnemonic: "ecall", Format: FormatI, Syntax: SyntaxNone,
		mask: mask, match: match,
		Exec: execEcall,
	}
}

// Encode returns the instruction word with this descriptor's fixed
// opcode/funct3/funct7 bits set and all operand fields zeroed — the base
// word the assembler's encoder fills in with registers and immediates.
func (d *Descriptor) Encode() Word {
	return Word(d.match)
}

// Dispatch selects the unique descriptor whose constraints match every
// bit of w, checking constraints most-specific-first as required by
// spec.md §4.1. Table entries never overlap by construction, so dispatch
// order only matters for which descriptor's mnemonic is reported on a
// successful match (there is exactly one).
func Dispatch(w Word) (*Descriptor, error) {
	for _, d := range Table {
		if uint32(w)&d.mask == d.match {
			return d, nil
		}
	}
	return nil, ErrDecode
}

// Lookup finds a descriptor by mnemonic, for use by the assembler's
// encoder.
func Lookup(mnemonic string) (*Descriptor, bool) {
	for _, d := range Table {
		if d.Mnemonic == mnemonic {
			return d, true
		}
	}
	return nil, false
}
