package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/addr"
)

// ErrProgramTooLarge is returned when a program does not fit between the program start and the end of memory.
var ErrProgramTooLarge = errors.New("program too large for memory")

// glyphs are the built-in 4x5 hex digit sprites, one row per byte.
var glyphs = [addr.GlyphCount * addr.GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the sprite bytes for the given hex digit (only the low nibble is used).
func Glyph(digit uint8) []byte {
	start := int(digit&0xF) * addr.GlyphSize
	return glyphs[start : start+addr.GlyphSize]
}

// Memory is the 4KB address space of the machine.
// All addresses are wrapped to 12 bits, so no access can ever go out of range.
type Memory struct {
	data [addr.MemorySize]byte
}

// New returns zero-filled memory.
func New() *Memory {
	return &Memory{}
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) byte {
	return m.data[addr.Wrap(address)]
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) {
	m.data[addr.Wrap(address)] = value
}

// LoadGlyphs writes the hex digit sprites at the start of memory.
// Calling it more than once has no further effect.
func (m *Memory) LoadGlyphs() {
	copy(m.data[addr.GlyphStart:addr.GlyphEnd], glyphs[:])
}

// LoadProgram copies the program at the program start address.
// Programs that don't fit are rejected as a whole.
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > addr.MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, max is %d", ErrProgramTooLarge, len(program), addr.MaxProgramSize)
	}

	copy(m.data[addr.ProgramStart:], program)
	slog.Debug("Program loaded", "bytes", len(program), "start", fmt.Sprintf("0x%03X", addr.ProgramStart))
	return nil
}

// Reset zero-fills the whole memory.
func (m *Memory) Reset() {
	m.data = [addr.MemorySize]byte{}
}

// Slice returns a copy of length bytes starting at the given address.
// The window is truncated at the end of memory instead of wrapping around.
func (m *Memory) Slice(start uint16, length int) []byte {
	start = addr.Wrap(start)
	end := int(start) + length
	if end > addr.MemorySize {
		end = addr.MemorySize
	}

	out := make([]byte, end-int(start))
	copy(out, m.data[start:end])
	return out
}
