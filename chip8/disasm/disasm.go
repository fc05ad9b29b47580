package disasm

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/cpu"
)

// InstructionLength is the size of every instruction in bytes.
const InstructionLength = 2

// Reader provides read access to the address space.
type Reader interface {
	Read(address uint16) byte
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Opcode      uint16
	Instruction string
}

// DisassembleOpcode returns the mnemonic for an opcode. Opcodes that don't
// decode are shown as data words.
func DisassembleOpcode(opcode uint16) string {
	instr, _ := cpu.Decode(opcode)
	return instr.String()
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, mem Reader) DisassemblyLine {
	pc = addr.Wrap(pc)
	opcode := bit.Combine(mem.Read(pc), mem.Read(addr.Wrap(pc+1)))

	return DisassemblyLine{
		Address:     pc,
		Opcode:      opcode,
		Instruction: DisassembleOpcode(opcode),
	}
}

// DisassembleBytes disassembles the instruction at offset within data.
// A trailing odd byte is shown as a single data byte.
func DisassembleBytes(data []byte, offset int) (string, int) {
	if offset+1 >= len(data) {
		if offset < len(data) {
			return fmt.Sprintf("DB 0x%02X", data[offset]), 1
		}
		return "", 0
	}
	return DisassembleOpcode(bit.Combine(data[offset], data[offset+1])), InstructionLength
}

// DisassembleRange disassembles count instructions starting from the given PC
func DisassembleRange(startPC uint16, count int, mem Reader) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	pc := startPC

	for i := 0; i < count; i++ {
		lines = append(lines, DisassembleAt(pc, mem))
		pc = addr.Wrap(pc + InstructionLength)
	}

	return lines
}

// DisassembleAround disassembles instructions around the given PC.
// Every instruction is two bytes wide, so walking backwards is exact unless
// the listing would run below address zero.
func DisassembleAround(currentPC uint16, beforeCount, afterCount int, mem Reader) []DisassemblyLine {
	before := beforeCount
	if maxBefore := int(currentPC) / InstructionLength; before > maxBefore {
		before = maxBefore
	}

	startPC := currentPC - uint16(before*InstructionLength)
	return DisassembleRange(startPC, before+1+afterCount, mem)
}

// FormatDisassemblyLine formats a disassembly line for display
func FormatDisassemblyLine(line DisassemblyLine, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = "→"
	}

	return fmt.Sprintf("%s0x%03X: %04X  %s", prefix, line.Address, line.Opcode, line.Instruction)
}
