package isa

import "errors"

// The following sentinel errors are returned by encode, decode, and
// execute operations. Callers use errors.Is to classify them.
var (
	// ErrUnknownRegister indicates a register token did not resolve to
	// any of x0..x31 or an ABI/alias name.
	ErrUnknownRegister = errors.New("isa: unknown register")

	// ErrBadImmediate indicates an immediate token could not be parsed.
	ErrBadImmediate = errors.New("isa: malformed immediate")

	// ErrImmediateOutOfRange indicates a parsed immediate does not fit
	// the target bit-field's range.
	ErrImmediateOutOfRange = errors.New("isa: immediate out of range")

	// ErrDecode indicates a 32-bit word did not match any descriptor in
	// the table.
	ErrDecode = errors.New("isa: cannot decode instruction")

	// ErrUnknownSyscall indicates an ecall was issued with an a7 code
	// not in the supported environment-call contract.
	ErrUnknownSyscall = errors.New("isa: unknown environment call")
)
