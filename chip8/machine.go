// Package chip8 ties memory, keypad, frame buffer and CPU together into a
// machine that a host drives one tick at a time.
package chip8

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/loader"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	// MinSpeed and MaxSpeed bound the instructions executed per tick.
	MinSpeed = 1
	MaxSpeed = 1000

	// memory shown to debuggers, starting a little before PC
	debugWindowBefore = 0x20
	debugWindowSize   = 0x60
)

// Config holds the tunables of a machine.
type Config struct {
	Speed int    // instructions per tick, 0 picks the default
	Seed  uint64 // RND seed, 0 picks a random one
}

func DefaultConfig() Config {
	return Config{Speed: cpu.DefaultSpeed}
}

// Machine is a complete CHIP-8 system.
type Machine struct {
	cpu    *cpu.CPU
	mem    *memory.Memory
	keypad *memory.Keypad
	frame  *video.FrameBuffer

	// program is kept so a reset can load it again
	program []byte
}

// New creates a machine with glyphs loaded and no program.
func New(cfg Config) *Machine {
	m := &Machine{
		mem:    memory.New(),
		keypad: memory.NewKeypad(),
		frame:  video.NewFrameBuffer(),
	}

	if cfg.Speed == 0 {
		cfg.Speed = cpu.DefaultSpeed
	}
	opts := []cpu.Option{cpu.WithSpeed(clampSpeed(cfg.Speed))}
	if cfg.Seed != 0 {
		opts = append(opts, cpu.WithRandom(cpu.NewRandom(cfg.Seed)))
	}
	m.cpu = cpu.New(m.mem, m.frame, m.keypad, opts...)

	m.LoadSpritesToMemory()
	return m
}

// NewWithFile creates a machine and loads the program at path into it.
func NewWithFile(path string, cfg Config) (*Machine, error) {
	program, err := loader.ReadProgram(path)
	if err != nil {
		return nil, err
	}

	m := New(cfg)
	if err := m.LoadProgramToMemory(program); err != nil {
		return nil, err
	}

	slog.Info("Loaded program", "path", path, "bytes", len(program))
	return m, nil
}

// RunOneTick runs one tick of the CPU. Faults are latched, once one is
// returned every later call returns it again.
func (m *Machine) RunOneTick() error {
	return m.cpu.RunTick()
}

func (m *Machine) TogglePause() {
	m.cpu.TogglePause()
}

func (m *Machine) LoadSpritesToMemory() {
	m.mem.LoadGlyphs()
}

func (m *Machine) LoadProgramToMemory(program []byte) error {
	if err := m.mem.LoadProgram(program); err != nil {
		return err
	}
	m.program = append(m.program[:0], program...)
	return nil
}

// Reload replaces the running program and restarts the machine from scratch.
// A program that does not fit leaves the current one running.
func (m *Machine) Reload(program []byte) error {
	if len(program) > addr.MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, max is %d", memory.ErrProgramTooLarge, len(program), addr.MaxProgramSize)
	}

	m.mem.Reset()
	m.LoadSpritesToMemory()
	if err := m.LoadProgramToMemory(program); err != nil {
		return err
	}
	m.keypad.Reset()
	m.frame.Clear()
	m.cpu.Reset()

	slog.Info("Machine reset", "program_bytes", len(program))
	return nil
}

// Reset restarts the current program.
func (m *Machine) Reset() error {
	return m.Reload(append([]byte(nil), m.program...))
}

// StepTick runs exactly one tick while paused and pauses again afterwards.
// It does nothing unless the machine is paused.
func (m *Machine) StepTick() error {
	if m.cpu.GetMode() != cpu.Paused {
		return nil
	}

	m.cpu.TogglePause()
	err := m.cpu.RunTick()
	if m.cpu.GetMode() != cpu.Paused {
		m.cpu.TogglePause()
	}

	slog.Debug("Stepped one tick", "pc", fmt.Sprintf("0x%03X", m.cpu.GetPC()), "ticks", m.cpu.GetTicks())
	return err
}

// SetSpeed sets the instructions per tick, clamped to [MinSpeed, MaxSpeed].
func (m *Machine) SetSpeed(speed int) {
	m.cpu.SetSpeed(clampSpeed(speed))
	slog.Info("Speed changed", "instructions_per_tick", m.cpu.GetSpeed())
}

func (m *Machine) Speed() int {
	return m.cpu.GetSpeed()
}

func clampSpeed(speed int) int {
	return max(MinSpeed, min(MaxSpeed, speed))
}

// HandleAction routes a key action to the keypad and emulator actions to
// the machine. Emulator actions only fire on press.
func (m *Machine) HandleAction(act action.Action, pressed bool) {
	if code, ok := act.KeyCode(); ok {
		if pressed {
			m.keypad.Press(code)
		} else {
			m.keypad.Release(code)
		}
		return
	}

	if !pressed {
		return
	}

	switch act {
	case action.EmulatorPauseToggle:
		m.TogglePause()
	case action.EmulatorStepTick:
		if err := m.StepTick(); err != nil {
			slog.Error("Step failed", "error", err)
		}
	case action.EmulatorReset:
		if err := m.Reset(); err != nil {
			slog.Error("Reset failed", "error", err)
		}
	case action.EmulatorSpeedUp:
		m.SetSpeed(m.Speed() * 2)
	case action.EmulatorSpeedDown:
		m.SetSpeed(m.Speed() / 2)
	}
}

// SoundActive reports whether the buzzer should be sounding.
func (m *Machine) SoundActive() bool {
	return m.cpu.GetSoundTimer() > 0
}

func (m *Machine) GetCurrentFrame() *video.FrameBuffer {
	return m.frame
}

func (m *Machine) Keypad() *memory.Keypad {
	return m.keypad
}

func (m *Machine) GetTickCount() uint64 {
	return m.cpu.GetTicks()
}

func (m *Machine) GetInstructionCount() uint64 {
	return m.cpu.GetInstructions()
}

// Fault returns the latched execution fault, if any.
func (m *Machine) Fault() *cpu.Fault {
	var fault *cpu.Fault
	if errors.As(m.cpu.Fault(), &fault) {
		return fault
	}
	return nil
}

// ExtractDebugData captures the machine state for debug displays.
func (m *Machine) ExtractDebugData() *debug.CompleteDebugData {
	pc := m.cpu.GetPC()

	data := &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			V:            m.cpu.GetRegisters(),
			I:            m.cpu.GetI(),
			PC:           pc,
			Stack:        m.cpu.GetStack(),
			DelayTimer:   m.cpu.GetDelayTimer(),
			SoundTimer:   m.cpu.GetSoundTimer(),
			Opcode:       m.cpu.GetCurrentOpcode(),
			Mode:         m.cpu.GetMode().String(),
			Speed:        m.cpu.GetSpeed(),
			Instructions: m.cpu.GetInstructions(),
			Ticks:        m.cpu.GetTicks(),
		},
	}

	start := uint16(0)
	if pc > debugWindowBefore {
		start = addr.Wrap(pc - debugWindowBefore)
	}
	data.Memory = &debug.MemorySnapshot{
		StartAddr: start,
		Bytes:     m.mem.Slice(start, debugWindowSize),
	}

	for code := range data.Keys {
		data.Keys[code] = m.keypad.IsKeyPressed(uint8(code))
	}

	switch {
	case m.cpu.Fault() != nil:
		data.DebuggerState = debug.DebuggerFaulted
		data.Fault = m.cpu.Fault().Error()
	case m.cpu.GetMode() == cpu.Paused:
		data.DebuggerState = debug.DebuggerPaused
	case m.cpu.GetMode() == cpu.AwaitingKey:
		data.DebuggerState = debug.DebuggerAwaitingKey
	default:
		data.DebuggerState = debug.DebuggerRunning
	}

	return data
}
