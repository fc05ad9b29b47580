package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
)

// machineActions are emulator actions handled by the machine itself.
var machineActions = []action.Action{
	action.EmulatorPauseToggle,
	action.EmulatorStepTick,
	action.EmulatorReset,
	action.EmulatorSpeedUp,
	action.EmulatorSpeedDown,
}

// backendActions are forwarded to backends implementing backend.ActionHandler.
var backendActions = []action.Action{
	action.EmulatorSnapshot,
	action.EmulatorDebugToggle,
	action.DebugLogLevelIncrease,
	action.DebugLogLevelDecrease,
}

// runner drives the machine one tick at a time: tick, buzzer, render and
// input, then wait for the limiter.
type runner struct {
	machine *chip8.Machine
	backend backend.Backend
	limiter timing.Limiter
	manager *input.Manager

	sound   audio.Output  // optional
	reloads <-chan []byte // optional, new programs from the file watcher

	running bool
}

func newRunner(m *chip8.Machine, b backend.Backend, limiter timing.Limiter) *runner {
	r := &runner{
		machine: m,
		backend: b,
		limiter: limiter,
		manager: input.NewManager(m.Keypad()),
		running: true,
	}

	r.manager.On(action.EmulatorQuit, event.Press, func() {
		slog.Info("Quitting")
		r.running = false
	})

	for _, act := range machineActions {
		r.manager.On(act, event.Press, func() {
			r.machine.HandleAction(act, true)
			if act == action.EmulatorPauseToggle {
				r.limiter.Reset()
			}
		})
	}

	if handler, ok := b.(backend.ActionHandler); ok {
		for _, act := range backendActions {
			r.manager.On(act, event.Press, func() {
				handler.HandleAction(act)
			})
		}
	}

	return r
}

func (r *runner) run() error {
	if r.sound != nil {
		defer r.sound.SetActive(false)
	}

	for r.running {
		r.applyReload()

		if err := r.machine.RunOneTick(); err != nil {
			return haltError(err)
		}

		if r.sound != nil {
			r.sound.SetActive(r.machine.SoundActive())
		}

		events, err := r.backend.Update(r.machine.GetCurrentFrame())
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}
		for _, evt := range events {
			r.manager.Trigger(evt.Action, evt.Type)
		}

		if r.running {
			r.limiter.WaitForNextTick()
		}
	}

	return nil
}

// applyReload swaps in a new program if the watcher produced one.
func (r *runner) applyReload() {
	select {
	case program, ok := <-r.reloads:
		if !ok {
			r.reloads = nil
			return
		}
		if err := r.machine.Reload(program); err != nil {
			slog.Error("Reload rejected", "error", err)
			return
		}
		r.limiter.Reset()
	default:
	}
}

// haltError reports a latched fault, the program is corrupt or malicious.
func haltError(err error) error {
	var fault *cpu.Fault
	if errors.As(err, &fault) {
		slog.Error("Program halted: corrupt or malicious ROM",
			"pc", fmt.Sprintf("0x%03X", fault.PC),
			"opcode", fmt.Sprintf("0x%04X", fault.Opcode),
			"error", fault.Err)
	}
	return fmt.Errorf("emulation halted: %w", err)
}
