package addr

// memory map
const (
	// MemorySize is the amount of addressable memory cells.
	MemorySize = 0x1000
	// Mask keeps an address inside the 12 bit address space.
	Mask uint16 = 0x0FFF

	// GlyphStart is where the built-in hex digit sprites are stored.
	GlyphStart uint16 = 0x000
	// GlyphSize is the size in bytes of a single glyph.
	GlyphSize = 5
	// GlyphCount is the amount of built-in glyphs (0-F).
	GlyphCount = 16
	// GlyphEnd is the first address after the glyph table.
	GlyphEnd = GlyphStart + GlyphSize*GlyphCount

	// ProgramStart is where programs are loaded and where execution begins.
	ProgramStart uint16 = 0x200
	// MaxProgramSize is the largest program that fits in memory.
	MaxProgramSize = MemorySize - int(ProgramStart)
)

// Wrap masks an address to the valid 12 bit range.
func Wrap(address uint16) uint16 {
	return address & Mask
}
