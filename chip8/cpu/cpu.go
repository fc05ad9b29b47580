package cpu

import (
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
)

// Bus provides access to the address space.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Display is the sink the CPU draws onto.
type Display interface {
	// SetPixel toggles the pixel at the wrapped coordinates, returning true if a lit pixel was turned off.
	SetPixel(x, y int) bool
	Clear()
}

// Keyboard is the source of key state. The CPU never writes key state,
// it only requests a wait and acknowledges its resume.
type Keyboard interface {
	IsKeyPressed(code uint8) bool
	LatestKey() uint8
	AwaitKeypress()
	ResumePending() bool
	AcknowledgeResume()
}

// Random produces the bytes used by the RND instruction.
type Random interface {
	Byte() uint8
}

// Mode is the run mode of the CPU.
type Mode uint8

const (
	// Running executes instructions and ticks timers.
	Running Mode = iota
	// Paused freezes execution and timers until toggled back.
	Paused
	// AwaitingKey freezes execution and timers until a key press is flagged by the keyboard.
	AwaitingKey
	// ResumePending means a key satisfied the wait and the next tick must write it back.
	ResumePending
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case AwaitingKey:
		return "WAITKEY"
	case ResumePending:
		return "RESUME"
	default:
		return "UNKNOWN"
	}
}

// DefaultSpeed is the default amount of instructions executed per tick.
const DefaultSpeed = 10

// CPU holds the complete interpreter state: registers, stack, timers and run mode.
type CPU struct {
	// registers
	v  [16]uint8
	i  uint16
	pc uint16

	stack []uint16

	delayTimer uint8
	soundTimer uint8

	// metadata
	mode          Mode
	pausedFrom    Mode
	currentOpcode uint16
	fault         error
	speed         int
	instructions  uint64
	ticks         uint64

	bus      Bus
	display  Display
	keyboard Keyboard
	random   Random
}

// Option configures a CPU.
type Option func(*CPU)

// WithSpeed sets how many instructions run per tick.
func WithSpeed(speed int) Option {
	return func(c *CPU) {
		c.SetSpeed(speed)
	}
}

// WithRandom replaces the source used by RND.
func WithRandom(r Random) Option {
	return func(c *CPU) {
		c.random = r
	}
}

// New returns a CPU ready to execute from the program start address.
func New(bus Bus, display Display, keyboard Keyboard, opts ...Option) *CPU {
	c := &CPU{
		pc:       addr.ProgramStart,
		speed:    DefaultSpeed,
		bus:      bus,
		display:  display,
		keyboard: keyboard,
		random:   NewRandom(rand.Uint64()),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reset puts registers, stack, timers and run mode back to their power-on state.
// Memory and collaborators are left untouched.
func (c *CPU) Reset() {
	c.v = [16]uint8{}
	c.i = 0
	c.pc = addr.ProgramStart
	c.stack = c.stack[:0]
	c.delayTimer = 0
	c.soundTimer = 0
	c.mode = Running
	c.pausedFrom = Running
	c.currentOpcode = 0
	c.fault = nil
	c.instructions = 0
	c.ticks = 0
}

// SetSpeed sets the instructions per tick, at least 1.
func (c *CPU) SetSpeed(speed int) {
	if speed < 1 {
		speed = 1
	}
	c.speed = speed
}

func (c *CPU) pushStack(address uint16) {
	c.stack = append(c.stack, address)
}

func (c *CPU) popStack() (uint16, error) {
	if len(c.stack) == 0 {
		return 0, ErrStackUnderflow
	}

	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return top, nil
}

// setFlag writes the carry/borrow/collision flag into VF.
func (c *CPU) setFlag(condition bool) {
	c.v[0xF] = bit.FromBool(condition)
}

// Debug getter methods for register display
func (c *CPU) GetV(x uint8) uint8       { return c.v[x&0xF] }
func (c *CPU) GetRegisters() [16]uint8  { return c.v }
func (c *CPU) GetI() uint16             { return c.i }
func (c *CPU) GetPC() uint16            { return c.pc }
func (c *CPU) GetDelayTimer() uint8     { return c.delayTimer }
func (c *CPU) GetSoundTimer() uint8     { return c.soundTimer }
func (c *CPU) GetMode() Mode            { return c.mode }
func (c *CPU) GetSpeed() int            { return c.speed }
func (c *CPU) GetInstructions() uint64  { return c.instructions }
func (c *CPU) GetTicks() uint64         { return c.ticks }
func (c *CPU) GetCurrentOpcode() uint16 { return c.currentOpcode }
func (c *CPU) Fault() error             { return c.fault }

// GetStack returns a copy of the call stack, oldest entry first.
func (c *CPU) GetStack() []uint16 {
	out := make([]uint16, len(c.stack))
	copy(out, c.stack)
	return out
}
