package chip8

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/video"
)

// Emulator is the surface the run loop drives.
type Emulator interface {
	RunOneTick() error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.CompleteDebugData
}

var _ Emulator = (*Machine)(nil)
