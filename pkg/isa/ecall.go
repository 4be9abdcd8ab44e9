package isa

import "fmt"

// Environment-call codes, dispatched on x17 (a7), per spec.md §4.1.
const (
	SyscallPrintInt    = 1
	SyscallSbrk        = 9
	SyscallPrintString = 4
	SyscallExit        = 10
	SyscallPrintChar   = 11
	SyscallExit2       = 17
)

const (
	regA0 = 10
	regA7 = 17
)

func execEcall(w Word, p Processor) error {
	switch code := p.Reg(regA7); code {
	case SyscallPrintInt:
		p.Sink().PrintInt(int32(p.Reg(regA0)))
	case SyscallPrintString:
		s, err := readCString(p, p.Reg(regA0))
		if err != nil {
			return err
		}
		p.Sink().PrintString(s)
	case SyscallPrintChar:
		p.Sink().PrintChar(byte(p.Reg(regA0)))
	case SyscallSbrk:
		old, err := p.Sbrk(int32(p.Reg(regA0)))
		if err != nil {
			return err
		}
		p.SetReg(regA0, old)
	case SyscallExit:
		p.Halt(0)
	case SyscallExit2:
		p.Halt(int32(p.Reg(regA0)))
	default:
		return fmt.Errorf("%w: code %d", ErrUnknownSyscall, code)
	}
	return nil
}

func readCString(p Processor, ptr uint32) (string, error) {
	var out []byte
	for {
		b, err := p.LoadByte(ptr)
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		out = append(out, b)
		ptr++
	}
	return string(out), nil
}
