package cpu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
)

// executor applies a decoded instruction to the CPU state.
// PC already points at the following instruction when it runs.
type executor func(*CPU, Instruction) error

var executors = [opCount]executor{
	OpCLS:     (*CPU).cls,
	OpRET:     (*CPU).ret,
	OpJP:      (*CPU).jp,
	OpCALL:    (*CPU).call,
	OpSEByte:  (*CPU).seByte,
	OpSNEByte: (*CPU).sneByte,
	OpSEReg:   (*CPU).seReg,
	OpLDByte:  (*CPU).ldByte,
	OpADDByte: (*CPU).addByte,
	OpLDReg:   (*CPU).ldReg,
	OpOR:      (*CPU).or,
	OpAND:     (*CPU).and,
	OpXOR:     (*CPU).xor,
	OpADDReg:  (*CPU).addReg,
	OpSUB:     (*CPU).sub,
	OpSHR:     (*CPU).shr,
	OpSUBN:    (*CPU).subn,
	OpSHL:     (*CPU).shl,
	OpSNEReg:  (*CPU).sneReg,
	OpLDI:     (*CPU).ldI,
	OpJPV0:    (*CPU).jpV0,
	OpRND:     (*CPU).rnd,
	OpDRW:     (*CPU).drw,
	OpSKP:     (*CPU).skp,
	OpSKNP:    (*CPU).sknp,
	OpLDVxDT:  (*CPU).ldVxDT,
	OpLDVxK:   (*CPU).ldVxK,
	OpLDDTVx:  (*CPU).ldDTVx,
	OpLDSTVx:  (*CPU).ldSTVx,
	OpADDI:    (*CPU).addI,
	OpLDF:     (*CPU).ldF,
	OpLDB:     (*CPU).ldB,
	OpLDIVx:   (*CPU).storeRegisters,
	OpLDVxI:   (*CPU).loadRegisters,
}

// ExecuteInstruction runs a single already fetched opcode.
// The PC is advanced past the instruction before it executes, so jumps,
// calls and returns simply overwrite it.
func (c *CPU) ExecuteInstruction(opcode uint16) error {
	if c.fault != nil {
		return c.fault
	}

	pc := c.pc
	c.currentOpcode = opcode
	c.pc = addr.Wrap(c.pc + 2)

	instr, err := Decode(opcode)
	if err != nil {
		return c.raise(pc, opcode, err)
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", pc),
			"opcode", fmt.Sprintf("0x%04X", opcode),
			"instr", instr.String())
	}

	if err := executors[instr.Op](c, instr); err != nil {
		return c.raise(pc, opcode, err)
	}

	c.instructions++
	return nil
}

// raise latches a fatal fault, every later execution returns it.
func (c *CPU) raise(pc, opcode uint16, err error) error {
	c.fault = &Fault{PC: pc, Opcode: opcode, Err: err}
	slog.Error("CPU fault", "pc", fmt.Sprintf("0x%03X", pc), "opcode", fmt.Sprintf("0x%04X", opcode), "error", err)
	return c.fault
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc = addr.Wrap(c.pc + 2)
	}
}

// 00E0
func (c *CPU) cls(_ Instruction) error {
	c.display.Clear()
	return nil
}

// 00EE
func (c *CPU) ret(_ Instruction) error {
	address, err := c.popStack()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// 1nnn
func (c *CPU) jp(in Instruction) error {
	c.pc = in.NNN
	return nil
}

// 2nnn
func (c *CPU) call(in Instruction) error {
	c.pushStack(c.pc)
	c.pc = in.NNN
	return nil
}

// 3xkk
func (c *CPU) seByte(in Instruction) error {
	c.skipIf(c.v[in.X] == in.KK)
	return nil
}

// 4xkk
func (c *CPU) sneByte(in Instruction) error {
	c.skipIf(c.v[in.X] != in.KK)
	return nil
}

// 5xy0
func (c *CPU) seReg(in Instruction) error {
	c.skipIf(c.v[in.X] == c.v[in.Y])
	return nil
}

// 6xkk
func (c *CPU) ldByte(in Instruction) error {
	c.v[in.X] = in.KK
	return nil
}

// 7xkk, wraps without touching VF.
func (c *CPU) addByte(in Instruction) error {
	c.v[in.X] += in.KK
	return nil
}

// 8xy0
func (c *CPU) ldReg(in Instruction) error {
	c.v[in.X] = c.v[in.Y]
	return nil
}

// 8xy1
func (c *CPU) or(in Instruction) error {
	c.v[in.X] |= c.v[in.Y]
	return nil
}

// 8xy2
func (c *CPU) and(in Instruction) error {
	c.v[in.X] &= c.v[in.Y]
	return nil
}

// 8xy3
func (c *CPU) xor(in Instruction) error {
	c.v[in.X] ^= c.v[in.Y]
	return nil
}

// 8xy4, VF = carry.
func (c *CPU) addReg(in Instruction) error {
	result, carry := bit.CheckedAdd(c.v[in.X], c.v[in.Y])
	c.v[in.X] = result
	c.setFlag(carry)
	return nil
}

// 8xy5, VF = Vx > Vy before the subtraction.
func (c *CPU) sub(in Instruction) error {
	result, noBorrow := bit.CheckedSub(c.v[in.X], c.v[in.Y])
	c.v[in.X] = result
	c.setFlag(noBorrow)
	return nil
}

// 8xy6, VF = bit 7 of Vx before the shift.
func (c *CPU) shr(in Instruction) error {
	value := c.v[in.X]
	c.v[in.X] = value >> 1
	c.setFlag(bit.IsSet(7, value))
	return nil
}

// 8xy7, VF = Vy > Vx before the subtraction.
func (c *CPU) subn(in Instruction) error {
	result, noBorrow := bit.CheckedSub(c.v[in.Y], c.v[in.X])
	c.v[in.X] = result
	c.setFlag(noBorrow)
	return nil
}

// 8xyE, VF = bit 7 of Vx before the shift.
func (c *CPU) shl(in Instruction) error {
	value := c.v[in.X]
	c.v[in.X] = value << 1
	c.setFlag(bit.IsSet(7, value))
	return nil
}

// 9xy0
func (c *CPU) sneReg(in Instruction) error {
	c.skipIf(c.v[in.X] != c.v[in.Y])
	return nil
}

// Annn
func (c *CPU) ldI(in Instruction) error {
	c.i = in.NNN
	return nil
}

// Bnnn
func (c *CPU) jpV0(in Instruction) error {
	c.pc = addr.Wrap(in.NNN + uint16(c.v[0]))
	return nil
}

// Cxkk
func (c *CPU) rnd(in Instruction) error {
	c.v[in.X] = c.random.Byte() & in.KK
	return nil
}

// Dxyn, XORs an n byte sprite at (Vx, Vy). VF = any lit pixel was erased.
func (c *CPU) drw(in Instruction) error {
	x, y := int(c.v[in.X]), int(c.v[in.Y])
	erased := false

	for row := 0; row < int(in.N); row++ {
		sprite := c.bus.Read(addr.Wrap(c.i + uint16(row)))
		for col := 0; col < 8; col++ {
			if !bit.IsSet(uint8(7-col), sprite) {
				continue
			}
			if c.display.SetPixel(x+col, y+row) {
				erased = true
			}
		}
	}

	c.setFlag(erased)
	return nil
}

// Ex9E
func (c *CPU) skp(in Instruction) error {
	c.skipIf(c.keyboard.IsKeyPressed(c.v[in.X]))
	return nil
}

// ExA1
func (c *CPU) sknp(in Instruction) error {
	c.skipIf(!c.keyboard.IsKeyPressed(c.v[in.X]))
	return nil
}

// Fx07
func (c *CPU) ldVxDT(in Instruction) error {
	c.v[in.X] = c.delayTimer
	return nil
}

// Fx0A, suspends until the keyboard flags a key press. Vx is written on resume.
func (c *CPU) ldVxK(_ Instruction) error {
	c.mode = AwaitingKey
	c.keyboard.AwaitKeypress()
	slog.Debug("Waiting for key press", "pc", fmt.Sprintf("0x%03X", c.pc))
	return nil
}

// Fx15
func (c *CPU) ldDTVx(in Instruction) error {
	c.delayTimer = c.v[in.X]
	return nil
}

// Fx18
func (c *CPU) ldSTVx(in Instruction) error {
	c.soundTimer = c.v[in.X]
	return nil
}

// Fx1E, no flag.
func (c *CPU) addI(in Instruction) error {
	c.i = addr.Wrap(c.i + uint16(c.v[in.X]))
	return nil
}

// Fx29
func (c *CPU) ldF(in Instruction) error {
	c.i = addr.GlyphStart + uint16(c.v[in.X])*addr.GlyphSize
	return nil
}

// Fx33, hundreds at I, tens at I+1, ones at I+2.
func (c *CPU) ldB(in Instruction) error {
	value := c.v[in.X]
	c.bus.Write(addr.Wrap(c.i), value/100)
	c.bus.Write(addr.Wrap(c.i+1), (value/10)%10)
	c.bus.Write(addr.Wrap(c.i+2), value%10)
	return nil
}

// Fx55, stores V0..Vx inclusive starting at I. I is left unchanged.
func (c *CPU) storeRegisters(in Instruction) error {
	for r := uint16(0); r <= uint16(in.X); r++ {
		c.bus.Write(addr.Wrap(c.i+r), c.v[r])
	}
	return nil
}

// Fx65, loads V0..Vx inclusive starting at I. I is left unchanged.
func (c *CPU) loadRegisters(in Instruction) error {
	for r := uint16(0); r <= uint16(in.X); r++ {
		c.v[r] = c.bus.Read(addr.Wrap(c.i + r))
	}
	return nil
}
