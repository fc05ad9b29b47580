package video

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
)

// FrameBuffer is the monochrome 64x32 display.
// Coordinates passed to SetPixel wrap around both axes, negative values included.
type FrameBuffer struct {
	buffer [FramebufferWidth * FramebufferHeight]bool
}

// NewFrameBuffer creates a blank frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func wrap(v, size int) int {
	return ((v % size) + size) % size
}

// SetPixel toggles the pixel at the wrapped coordinates.
// Returns true if the toggle turned a lit pixel off.
func (fb *FrameBuffer) SetPixel(x, y int) bool {
	idx := wrap(y, FramebufferHeight)*FramebufferWidth + wrap(x, FramebufferWidth)
	fb.buffer[idx] = !fb.buffer[idx]
	return !fb.buffer[idx]
}

// GetPixel returns whether the pixel at the wrapped coordinates is lit.
func (fb *FrameBuffer) GetPixel(x, y int) bool {
	return fb.buffer[wrap(y, FramebufferHeight)*FramebufferWidth+wrap(x, FramebufferWidth)]
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.buffer = [FramebufferWidth * FramebufferHeight]bool{}
}

// ToSlice returns the pixels in row-major order.
func (fb *FrameBuffer) ToSlice() []bool {
	return fb.buffer[:]
}

// Copy returns an independent copy of the frame.
func (fb *FrameBuffer) Copy() *FrameBuffer {
	c := *fb
	return &c
}

// LitCount returns how many pixels are on.
func (fb *FrameBuffer) LitCount() int {
	n := 0
	for _, p := range fb.buffer {
		if p {
			n++
		}
	}
	return n
}
