package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// MockBackend is a test backend that returns predetermined events, one batch per update
type MockBackend struct {
	batches     [][]backend.InputEvent
	updateCalls int
	handled     []action.Action
	frames      []int // lit pixels seen on each update
}

func (m *MockBackend) Init(config backend.BackendConfig) error { return nil }

func (m *MockBackend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	m.updateCalls++
	m.frames = append(m.frames, frame.LitCount())
	if len(m.batches) == 0 {
		return nil, nil
	}
	events := m.batches[0]
	m.batches = m.batches[1:]
	return events, nil
}

func (m *MockBackend) Cleanup() error { return nil }

func (m *MockBackend) HandleAction(act action.Action) {
	m.handled = append(m.handled, act)
}

// fakeSound records the buzzer gate.
type fakeSound struct {
	states []bool
}

func (f *fakeSound) SetActive(active bool) { f.states = append(f.states, active) }
func (f *fakeSound) Close() error          { return nil }

func press(act action.Action) backend.InputEvent {
	return backend.InputEvent{Action: act, Type: event.Press}
}

func newTestMachine(t *testing.T, opcodes ...uint16) *chip8.Machine {
	t.Helper()
	program := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		program = append(program, byte(op>>8), byte(op))
	}
	m := chip8.New(chip8.Config{Speed: 1})
	require.NoError(t, m.LoadProgramToMemory(program))
	return m
}

func TestRunner_EventFlow(t *testing.T) {
	tests := []struct {
		name          string
		batches       [][]backend.InputEvent
		expectedCalls int
		expectedV0    uint8
		handled       []action.Action
	}{
		{
			name:          "quit event stops loop",
			batches:       [][]backend.InputEvent{{press(action.EmulatorQuit)}},
			expectedCalls: 1,
			expectedV0:    1,
		},
		{
			name: "pause stops execution",
			batches: [][]backend.InputEvent{
				{press(action.EmulatorPauseToggle)},
				nil,
				nil,
				{press(action.EmulatorQuit)},
			},
			expectedCalls: 4,
			expectedV0:    1,
		},
		{
			name: "backend actions are forwarded",
			batches: [][]backend.InputEvent{
				{press(action.EmulatorSnapshot), press(action.EmulatorDebugToggle)},
				{press(action.EmulatorQuit)},
			},
			expectedCalls: 2,
			expectedV0:    1,
			handled:       []action.Action{action.EmulatorSnapshot, action.EmulatorDebugToggle},
		},
		{
			name: "keypad events reach the machine",
			batches: [][]backend.InputEvent{
				{press(action.Key1), {Action: action.Key1, Type: event.Release}, press(action.EmulatorQuit)},
			},
			expectedCalls: 1,
			expectedV0:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ADD V0, 1; JP 0x200
			m := newTestMachine(t, 0x7001, 0x1200, 0x1200)
			mock := &MockBackend{batches: tt.batches}

			r := newRunner(m, mock, timing.NewNoOpLimiter())
			require.NoError(t, r.run())

			assert.Equal(t, tt.expectedCalls, mock.updateCalls)
			assert.Equal(t, tt.expectedV0, m.ExtractDebugData().CPU.V[0])
			assert.Equal(t, tt.handled, mock.handled)
		})
	}
}

func TestRunner_Headless(t *testing.T) {
	// LD V0, 0; LD F, V0; DRW V1, V2, 5; JP 0x206
	m := newTestMachine(t, 0x6000, 0xF029, 0xD125, 0x1206)

	h := headless.New(10, headless.SnapshotConfig{})
	require.NoError(t, h.Init(backend.BackendConfig{}))

	r := newRunner(m, h, timing.NewNoOpLimiter())
	require.NoError(t, r.run())

	assert.Equal(t, 10, h.TickCount())
	assert.Equal(t, uint64(10), m.GetTickCount())
	assert.Positive(t, m.GetCurrentFrame().LitCount())
}

func TestRunner_FaultHaltsLoop(t *testing.T) {
	m := newTestMachine(t, 0x7001, 0x00EE)
	mock := &MockBackend{}

	r := newRunner(m, mock, timing.NewNoOpLimiter())
	err := r.run()

	require.ErrorIs(t, err, cpu.ErrStackUnderflow)
	var fault *cpu.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, 1, mock.updateCalls, "loop stops on the faulting tick")
}

func TestRunner_Reload(t *testing.T) {
	m := newTestMachine(t, 0x7001, 0x1200)
	reloads := make(chan []byte, 1)
	reloads <- []byte{0x61, 0x09, 0x12, 0x02}
	close(reloads)

	mock := &MockBackend{batches: [][]backend.InputEvent{nil, {press(action.EmulatorQuit)}}}
	r := newRunner(m, mock, timing.NewNoOpLimiter())
	r.reloads = reloads
	require.NoError(t, r.run())

	data := m.ExtractDebugData()
	assert.Equal(t, uint8(9), data.CPU.V[1])
	assert.Equal(t, uint8(0), data.CPU.V[0], "old program never ran")
	assert.Nil(t, r.reloads, "closed watcher is dropped")
}

func TestRunner_SoundGate(t *testing.T) {
	// LD V0, 2; LD ST, V0; JP 0x204
	m := newTestMachine(t, 0x6002, 0xF018, 0x1204)
	mock := &MockBackend{batches: [][]backend.InputEvent{nil, nil, nil, nil, {press(action.EmulatorQuit)}}}
	sound := &fakeSound{}

	r := newRunner(m, mock, timing.NewNoOpLimiter())
	r.sound = sound
	require.NoError(t, r.run())

	// ST=2 is set on the second tick and decremented to 1 in the same tick
	assert.Equal(t, []bool{false, true, false, false, false, false}, sound.states)
}

func TestCreateLimiter(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		limiter string
		want    timing.Limiter
	}{
		{"adaptive", backendTerminal, limiterAdaptive, &timing.AdaptiveLimiter{}},
		{"ticker", backendSDL2, limiterTicker, &timing.TickerLimiter{}},
		{"headless is never paced", backendHeadless, limiterTicker, timing.NewNoOpLimiter()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := createLimiter(tt.backend, tt.limiter)
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
			if ticker, ok := l.(*timing.TickerLimiter); ok {
				ticker.Stop()
			}
		})
	}

	_, err := createLimiter(backendTerminal, "vsync")
	assert.Error(t, err)
}

func TestRomName(t *testing.T) {
	assert.Equal(t, "pong", romName("/roms/pong.ch8"))
	assert.Equal(t, "tetris", romName("tetris"))
}
