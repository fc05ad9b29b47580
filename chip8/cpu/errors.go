package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrStackUnderflow is returned when a subroutine return finds an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrUnknownOpcode is returned when an opcode matches no known instruction.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrAddressOutOfRange is returned when an address escapes the 12 bit address space.
	ErrAddressOutOfRange = errors.New("address out of range")
)

// Fault is a fatal execution error. The program is either corrupt or
// hostile, and the CPU refuses to run any further instruction.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("execution fault at 0x%03X (opcode 0x%04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
