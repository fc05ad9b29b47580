package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Op identifies one of the CHIP-8 instructions.
type Op uint8

const (
	OpInvalid Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEByte     // 3xkk
	OpSNEByte    // 4xkk
	OpSEReg      // 5xy0
	OpLDByte     // 6xkk
	OpADDByte    // 7xkk
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDReg     // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxkk
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpLDIVx      // Fx55
	OpLDVxI      // Fx65

	opCount
)

// Instruction is a decoded opcode: the operation plus every operand field.
// Fields that the operation doesn't use are still filled in.
type Instruction struct {
	Op  Op
	X   uint8  // bits 8-11
	Y   uint8  // bits 4-7
	N   uint8  // bits 0-3
	KK  uint8  // bits 0-7
	NNN uint16 // bits 0-11
	Raw uint16
}

// Decode turns a 16 bit opcode into an Instruction.
// Opcodes outside the instruction set return ErrUnknownOpcode.
func Decode(opcode uint16) (Instruction, error) {
	instr := Instruction{
		X:   bit.Nibble(opcode, 2),
		Y:   bit.Nibble(opcode, 1),
		N:   bit.Nibble(opcode, 0),
		KK:  bit.Low(opcode),
		NNN: opcode & 0x0FFF,
		Raw: opcode,
	}

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			instr.Op = OpCLS
		case 0x00EE:
			instr.Op = OpRET
		}
	case 0x1:
		instr.Op = OpJP
	case 0x2:
		instr.Op = OpCALL
	case 0x3:
		instr.Op = OpSEByte
	case 0x4:
		instr.Op = OpSNEByte
	case 0x5:
		if instr.N == 0 {
			instr.Op = OpSEReg
		}
	case 0x6:
		instr.Op = OpLDByte
	case 0x7:
		instr.Op = OpADDByte
	case 0x8:
		instr.Op = aluOps[instr.N]
	case 0x9:
		if instr.N == 0 {
			instr.Op = OpSNEReg
		}
	case 0xA:
		instr.Op = OpLDI
	case 0xB:
		instr.Op = OpJPV0
	case 0xC:
		instr.Op = OpRND
	case 0xD:
		instr.Op = OpDRW
	case 0xE:
		switch instr.KK {
		case 0x9E:
			instr.Op = OpSKP
		case 0xA1:
			instr.Op = OpSKNP
		}
	case 0xF:
		instr.Op = miscOps[instr.KK]
	}

	if instr.Op == OpInvalid {
		return instr, ErrUnknownOpcode
	}

	return instr, nil
}

// aluOps maps the low nibble of 8xy_ opcodes.
var aluOps = [16]Op{
	0x0: OpLDReg,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDReg,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// miscOps maps the low byte of Fx__ opcodes.
var miscOps = map[uint8]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDI,
	0x29: OpLDF,
	0x33: OpLDB,
	0x55: OpLDIVx,
	0x65: OpLDVxI,
}

var opcodeNames = [opCount]string{
	OpInvalid: "???",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

// Name returns the instruction mnemonic without operands.
func (op Op) Name() string {
	if op >= opCount {
		return opcodeNames[OpInvalid]
	}
	return opcodeNames[op]
}

// String returns the instruction in assembly form, e.g. "ADD V1, V2".
func (i Instruction) String() string {
	name := i.Op.Name()

	switch i.Op {
	case OpCLS, OpRET:
		return name
	case OpJP, OpCALL:
		return fmt.Sprintf("%s 0x%03X", name, i.NNN)
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%s V%X, 0x%02X", name, i.X, i.KK)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		return fmt.Sprintf("%s V%X, V%X", name, i.X, i.Y)
	case OpSHR, OpSHL:
		return fmt.Sprintf("%s V%X", name, i.X)
	case OpLDI:
		return fmt.Sprintf("%s I, 0x%03X", name, i.NNN)
	case OpJPV0:
		return fmt.Sprintf("%s V0, 0x%03X", name, i.NNN)
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, i.X, i.Y, i.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, i.X)
	case OpLDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, i.X)
	case OpLDVxK:
		return fmt.Sprintf("%s V%X, K", name, i.X)
	case OpLDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, i.X)
	case OpLDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, i.X)
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, i.X)
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, i.X)
	case OpLDB:
		return fmt.Sprintf("%s B, V%X", name, i.X)
	case OpLDIVx:
		return fmt.Sprintf("%s [I], V%X", name, i.X)
	case OpLDVxI:
		return fmt.Sprintf("%s V%X, [I]", name, i.X)
	default:
		return fmt.Sprintf("DW 0x%04X", i.Raw)
	}
}
