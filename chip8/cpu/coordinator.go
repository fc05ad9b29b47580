package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
)

// fetch reads the big-endian opcode at PC.
func (c *CPU) fetch() uint16 {
	high := c.bus.Read(addr.Wrap(c.pc))
	low := c.bus.Read(addr.Wrap(c.pc + 1))
	return bit.Combine(high, low)
}

// Step fetches and executes the instruction at PC.
func (c *CPU) Step() error {
	if c.fault != nil {
		return c.fault
	}

	if c.pc&^addr.Mask != 0 {
		return c.raise(c.pc, 0, ErrAddressOutOfRange)
	}

	return c.ExecuteInstruction(c.fetch())
}

// RunTick runs one unit of work: up to speed instructions, then one timer
// decrement if the CPU is still running. It never blocks, a pending key
// wait or a pause simply makes it return without changing any state.
func (c *CPU) RunTick() error {
	if c.fault != nil {
		return c.fault
	}

	switch c.mode {
	case Paused:
		return nil
	case AwaitingKey:
		if !c.keyboard.ResumePending() {
			return nil
		}
		c.mode = ResumePending
	}

	if c.mode == ResumePending {
		if err := c.resume(); err != nil {
			return err
		}
	}

	for n := 0; n < c.speed && c.mode == Running; n++ {
		if err := c.Step(); err != nil {
			return err
		}
	}

	if c.mode == Running {
		c.tickTimers()
	}
	c.ticks++

	return nil
}

// resume completes a key wait: the waiting instruction is recovered from
// PC-2 and the pressed key is written into its Vx.
func (c *CPU) resume() error {
	waitPC := addr.Wrap(c.pc - 2)
	opcode := bit.Combine(c.bus.Read(waitPC), c.bus.Read(addr.Wrap(waitPC+1)))

	instr, err := Decode(opcode)
	if err != nil {
		return c.raise(waitPC, opcode, err)
	}
	if instr.Op != OpLDVxK {
		return c.raise(waitPC, opcode, fmt.Errorf("resume from non key-wait instruction %s: %w", instr, ErrUnknownOpcode))
	}

	key := c.keyboard.LatestKey()
	c.v[instr.X] = key
	c.keyboard.AcknowledgeResume()
	c.mode = Running

	slog.Debug("Resumed after key press", "key", key, "register", fmt.Sprintf("V%X", instr.X))
	return nil
}

// tickTimers decrements delay and sound towards zero.
func (c *CPU) tickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// TogglePause switches between Paused and whatever mode was active before pausing.
func (c *CPU) TogglePause() {
	if c.mode == Paused {
		c.mode = c.pausedFrom
		slog.Info("Execution resumed", "mode", c.mode)
		return
	}

	c.pausedFrom = c.mode
	c.mode = Paused
	slog.Info("Execution paused")
}
