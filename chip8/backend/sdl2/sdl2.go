//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig

	events       []backend.InputEvent
	pixels       []byte
	currentFrame *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{
		pixels: make([]byte, video.FramebufferWidth*video.FramebufferHeight*display.RGBABytesPerPixel),
	}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	scale := config.Scale
	if scale <= 0 {
		scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.running = true
	slog.Info("SDL2 backend initialized", "scale", scale)

	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	s.events = s.events[:0]

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}

	if !s.running {
		return s.events, nil
	}

	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return s.events, err
	}

	if s.config.ShowDebug && s.config.DebugProvider != nil {
		s.updateTitle()
	}

	return s.events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// HandleAction processes backend-specific actions
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame, s.config.SnapshotScale)
	case action.EmulatorDebugToggle:
		s.config.ShowDebug = !s.config.ShowDebug
		if !s.config.ShowDebug {
			s.window.SetTitle(s.config.Title)
		}
	}
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.running = false
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		if s.config.Callbacks.OnQuit != nil {
			s.config.Callbacks.OnQuit()
		}

	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP && act.IsKey():
			// SDL reports real releases, only keypad keys care about them
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

// sdlKeyNameMap converts SDL keycodes to key names used in default mappings
var sdlKeyNameMap = map[sdl.Keycode]string{
	sdl.K_SPACE:     "Space",
	sdl.K_ESCAPE:    "Escape",
	sdl.K_BACKSPACE: "Backspace",
	sdl.K_F9:        "F9",
	sdl.K_F10:       "F10",
}

// buildKeyMapping creates the key mapping from default mappings.
// SDL keycodes of printable keys are their ASCII value.
func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[sdl.Keycode(r[0])] = act
		}
	}
	for key, keyName := range sdlKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	return mapping
}

// keyMapping maps SDL2 keys to actions
var keyMapping = buildKeyMapping()

// fillPixels converts the frame into ABGR byte order for little-endian RGBA8888.
func fillPixels(dst []byte, frame *video.FrameBuffer) {
	for i, lit := range frame.ToSlice() {
		idx := i * display.RGBABytesPerPixel
		r, g, b := uint8(display.BackgroundR), uint8(display.BackgroundG), uint8(display.BackgroundB)
		if lit {
			r, g, b = display.ForegroundR, display.ForegroundG, display.ForegroundB
		}
		dst[idx] = display.FullAlpha
		dst[idx+1] = b
		dst[idx+2] = g
		dst[idx+3] = r
	}
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	fillPixels(s.pixels, frame)

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(display.BackgroundR, display.BackgroundG, display.BackgroundB, display.FullAlpha)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

// updateTitle shows the machine status in the window title.
func (s *Backend) updateTitle() {
	data := s.config.DebugProvider.ExtractDebugData()
	if data == nil || data.CPU == nil {
		return
	}

	s.window.SetTitle(fmt.Sprintf("%s - %s PC:0x%03X I:0x%03X speed:%d",
		s.config.Title, data.DebuggerState, data.CPU.PC, data.CPU.I, data.CPU.Speed))
}
