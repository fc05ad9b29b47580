package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per terminal row
	screenRows = height / 2

	registerHeight = 11
	disasmHeight   = 9
	minTermWidth   = width + 30
	minTermHeight  = 24
	logBufferSize  = 200
)

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals only report key presses, releases are synthesized when a key
// stops repeating.
const keyTimeout = 100 * time.Millisecond

var (
	pixelStyle  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xE0, 0xF8, 0xD0)).Background(tcell.NewRGBColor(0x08, 0x18, 0x20))
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	handlerLvl slog.LevelVar // capture level of the log handler, follows logLevel
	config     backend.BackendConfig
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	prevLogger *slog.Logger // restored on cleanup

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous update

	// For accessing emulator state
	debugProvider backend.DebugDataProvider

	currentFrame *video.FrameBuffer // Store current frame for snapshot generation

	newScreen func() (tcell.Screen, error)
	now       func() time.Time
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		newScreen: tcell.NewScreen,
		now:       time.Now,
	}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.logLevel = config.LogLevel
	t.handlerLvl.Set(config.LogLevel)
	t.eventQueue = nil
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen

	// logs can't go to stderr while tcell owns the terminal
	t.logBuffer = render.NewLogBuffer(logBufferSize)
	t.prevLogger = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, &t.handlerLvl)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, quitting", "signal", sig)
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.keypadEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// keypadEvents turns the timestamps of repeated key presses into
// press/hold/release edges.
func (t *Backend) keypadEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = currentlyActive
	return events
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	if t.prevLogger != nil {
		slog.SetDefault(t.prevLogger)
		t.prevLogger = nil
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame, t.config.SnapshotScale)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[unicode.ToLower(ev.Rune())]
	}
	if !ok {
		return
	}

	if act.IsKey() {
		t.keyStates[act] = now
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping creates the rune mapping from the single character default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		t.handlerLvl.Set(t.logLevel)
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := width + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawScreen(frame)

	var data *debug.CompleteDebugData
	if t.config.ShowDebug && t.debugProvider != nil {
		data = t.debugProvider.ExtractDebugData()
	}

	logsY := 1
	if data != nil && data.CPU != nil {
		t.drawRegisters(data, rightPanelX, 1, rightPanelWidth)
		t.drawDisassembly(data, rightPanelX, registerHeight+3, rightPanelWidth)
		logsY = registerHeight + disasmHeight + 5
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight)
}

// drawText writes a single line clipped to maxWidth cells.
func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = fmt.Sprintf(" %s ", t.config.Title)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	startX := dividerX + 2
	panelWidth := termWidth - startX

	if t.config.ShowDebug && t.debugProvider != nil {
		t.drawText(startX, 0, panelWidth, " Registers ", titleStyle)

		registerEndY := registerHeight + 1
		t.drawRule(dividerX, registerEndY, termWidth)
		t.drawText(startX, registerEndY+1, panelWidth, " Disassembly ", titleStyle)

		disasmEndY := registerEndY + disasmHeight + 2
		t.drawRule(dividerX, disasmEndY, termWidth)
		t.drawText(startX, disasmEndY, panelWidth, t.logsTitle(), titleStyle)
	} else {
		t.drawText(startX, 0, panelWidth, t.logsTitle(), titleStyle)
	}

	// screen caption below the display area
	t.drawText(1, screenRows+2, dividerX-1, "1234/QWER/ASDF/ZXCV keypad", borderStyle)

	helpText := " SPACE=pause N=step BKSP=reset [/]=speed F9=snapshot F10=debug ESC=quit | Logs: +/- filter "
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) drawRule(dividerX, y, termWidth int) {
	for x := dividerX + 1; x < termWidth; x++ {
		t.screen.SetContent(x, y, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
}

func (t *Backend) logsTitle() string {
	levelStr := "INFO"
	switch t.logLevel {
	case slog.LevelDebug:
		levelStr = "DEBUG"
	case slog.LevelWarn:
		levelStr = "WARN"
	case slog.LevelError:
		levelStr = "ERROR"
	}
	return fmt.Sprintf(" Logs [%s] (-/+ filter) ", levelStr)
}

// drawScreen renders the frame with half blocks, two pixel rows per terminal row.
func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			char, _ := render.HalfBlockChar(frame.GetPixel(x, y), frame.GetPixel(x, y+1))
			t.screen.SetContent(x, y/2+1, char, nil, pixelStyle)
		}
	}
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, maxWidth int) {
	cpu := data.CPU

	lines := []string{
		fmt.Sprintf("Status: %-8s Speed: %d", strings.ToUpper(data.DebuggerState.String()), cpu.Speed),
	}
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", r, cpu.V[r])
		}
		lines = append(lines, strings.TrimSpace(sb.String()))
	}
	lines = append(lines,
		fmt.Sprintf("I: 0x%03X  PC: 0x%03X  OP: %04X", cpu.I, cpu.PC, cpu.Opcode),
		fmt.Sprintf("DT: %02X  ST: %02X  SP: %d", cpu.DelayTimer, cpu.SoundTimer, len(cpu.Stack)),
		fmt.Sprintf("Stack: %s", formatStack(cpu.Stack, 4)),
		fmt.Sprintf("Keys: %s", formatKeys(data.Keys)),
		fmt.Sprintf("Ticks: %d  Instr: %d", cpu.Ticks, cpu.Instructions),
	)
	if data.Fault != "" {
		lines = append(lines, data.Fault)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	faultStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	for i, line := range lines {
		if i >= registerHeight {
			break
		}
		lineStyle := style
		if data.Fault != "" && line == data.Fault {
			lineStyle = faultStyle
		}
		t.drawText(startX, startY+i, maxWidth, line, lineStyle)
	}
}

// formatStack shows the newest entries first.
func formatStack(stack []uint16, limit int) string {
	if len(stack) == 0 {
		return "-"
	}

	parts := make([]string, 0, limit+1)
	for i := len(stack) - 1; i >= 0 && len(parts) < limit; i-- {
		parts = append(parts, fmt.Sprintf("%03X", stack[i]))
	}
	if len(stack) > limit {
		parts = append(parts, "...")
	}
	return strings.Join(parts, " ")
}

// formatKeys shows held keys by their hex digit and others as dots.
func formatKeys(keys [16]bool) string {
	var sb strings.Builder
	for code, held := range keys {
		if held {
			fmt.Fprintf(&sb, "%X", code)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, maxWidth int) {
	if data.Memory == nil {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	lines := debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight)
	for i, line := range lines {
		prefix, lineStyle := " ", style
		if line.IsCurrent {
			prefix, lineStyle = "→", currentStyle
		}
		text := fmt.Sprintf("%s0x%03X: %s", prefix, line.Address, line.Instruction)
		t.drawText(startX, startY+i, maxWidth, text, lineStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, maxWidth, termHeight int) {
	availableHeight := termHeight - startY - 1
	if maxWidth <= 0 || availableHeight <= 0 {
		return
	}

	logs := make([]render.LogEntry, 0, availableHeight)
	for _, entry := range t.logBuffer.GetRecent(0) {
		if entry.Level < t.logLevel {
			continue
		}
		logs = append(logs, entry)
		if len(logs) >= availableHeight {
			break
		}
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range logs {
		style := infoStyle
		switch entry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		text := render.FormatLogEntry(entry)
		if len(text) > maxWidth && maxWidth > 3 {
			text = text[:maxWidth-3] + "..."
		}
		t.drawText(startX, startY+i, maxWidth, text, style)
	}
}
