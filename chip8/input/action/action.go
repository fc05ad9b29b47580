package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Hex keypad, the value of each action is its key code
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepTick
	EmulatorReset
	EmulatorSnapshot
	EmulatorDebugToggle
	EmulatorSpeedUp
	EmulatorSpeedDown
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by what handles them.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
	CategoryDebug
)

// Info describes an action for help screens and logs.
type Info struct {
	Name        string
	Description string
	Category    Category
}

var actionInfo = map[Action]Info{
	Key0: {"Key0", "Keypad 0", CategoryKeypad},
	Key1: {"Key1", "Keypad 1", CategoryKeypad},
	Key2: {"Key2", "Keypad 2", CategoryKeypad},
	Key3: {"Key3", "Keypad 3", CategoryKeypad},
	Key4: {"Key4", "Keypad 4", CategoryKeypad},
	Key5: {"Key5", "Keypad 5", CategoryKeypad},
	Key6: {"Key6", "Keypad 6", CategoryKeypad},
	Key7: {"Key7", "Keypad 7", CategoryKeypad},
	Key8: {"Key8", "Keypad 8", CategoryKeypad},
	Key9: {"Key9", "Keypad 9", CategoryKeypad},
	KeyA: {"KeyA", "Keypad A", CategoryKeypad},
	KeyB: {"KeyB", "Keypad B", CategoryKeypad},
	KeyC: {"KeyC", "Keypad C", CategoryKeypad},
	KeyD: {"KeyD", "Keypad D", CategoryKeypad},
	KeyE: {"KeyE", "Keypad E", CategoryKeypad},
	KeyF: {"KeyF", "Keypad F", CategoryKeypad},

	EmulatorPauseToggle: {"PauseToggle", "Pause or resume execution", CategoryEmulator},
	EmulatorStepTick:    {"StepTick", "Run a single tick while paused", CategoryEmulator},
	EmulatorReset:       {"Reset", "Reload the program and restart", CategoryEmulator},
	EmulatorSnapshot:    {"Snapshot", "Save the screen as PNG", CategoryEmulator},
	EmulatorDebugToggle: {"DebugToggle", "Show or hide the debug panel", CategoryEmulator},
	EmulatorSpeedUp:     {"SpeedUp", "Run more instructions per tick", CategoryEmulator},
	EmulatorSpeedDown:   {"SpeedDown", "Run fewer instructions per tick", CategoryEmulator},
	EmulatorQuit:        {"Quit", "Exit the emulator", CategoryEmulator},

	DebugLogLevelIncrease: {"LogLevelIncrease", "More verbose logging", CategoryDebug},
	DebugLogLevelDecrease: {"LogLevelDecrease", "Less verbose logging", CategoryDebug},
}

// GetInfo returns the description of an action.
func GetInfo(a Action) (Info, bool) {
	info, ok := actionInfo[a]
	return info, ok
}

func (a Action) String() string {
	if info, ok := actionInfo[a]; ok {
		return info.Name
	}
	return "Unknown"
}

// IsKey reports whether the action is one of the 16 keypad keys.
func (a Action) IsKey() bool {
	return a >= Key0 && a <= KeyF
}

// KeyCode returns the keypad code for a key action.
func (a Action) KeyCode() (uint8, bool) {
	if !a.IsKey() {
		return 0, false
	}
	return uint8(a), true
}

// FromKeyCode returns the key action for a keypad code, masked to 0-F.
func FromKeyCode(code uint8) Action {
	return Key0 + Action(code&0xF)
}
