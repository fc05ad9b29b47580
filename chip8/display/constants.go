package display

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// FullAlpha is the alpha value of an opaque pixel
	FullAlpha = 0xFF
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for CHIP-8 pixels
	DefaultPixelScale = 10
	// DefaultWindowWidth is the default window width (64 * scale)
	DefaultWindowWidth = 64 * DefaultPixelScale // 640
	// DefaultWindowHeight is the default window height (32 * scale)
	DefaultWindowHeight = 32 * DefaultPixelScale // 320
)

// Color mapping constants, a lit pixel is drawn in the foreground color
const (
	ForegroundR = 0xE0
	ForegroundG = 0xF8
	ForegroundB = 0xD0

	BackgroundR = 0x08
	BackgroundG = 0x18
	BackgroundB = 0x20
)

// Terminal rendering characters
const (
	// UpperHalfBlock draws the top pixel of a cell pair
	UpperHalfBlock = '▀'
	// LowerHalfBlock draws the bottom pixel of a cell pair
	LowerHalfBlock = '▄'
	// FullBlock draws both pixels of a cell pair
	FullBlock = '█'
)
