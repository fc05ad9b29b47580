package backend

import (
	"log/slog"

	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update handles rendering the frame and processing platform events.
	// Backends should:
	// 1. Poll for platform-specific events (keyboard, window events, etc.)
	// 2. Translate events to Actions and return them as InputEvents
	// 3. Render the provided frame
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// ActionHandler is implemented by backends that handle some actions
// themselves, like toggling their debug panel or saving a snapshot.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// DebugDataProvider exposes machine state to debug displays.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// InputEvent is a platform input translated to an emulator action.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title         string
	Scale         int
	ShowDebug     bool              // Backends may ignore unsupported features
	SnapshotScale int               // Upscaling for PNG snapshots
	LogLevel      slog.Level        // Initial log level for backends that own log output
	DebugProvider DebugDataProvider // Optional, enables register and disassembly views
	Callbacks     BackendCallbacks  // Callbacks for backend communication
}

// BackendCallbacks allows backends to communicate with the emulator
type BackendCallbacks struct {
	OnQuit func() // Backend requests shutdown (e.g., window close)
}
