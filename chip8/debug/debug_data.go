package debug

// CPUState contains all CPU register information for debugging
type CPUState struct {
	V  [16]uint8
	I  uint16
	PC uint16

	Stack      []uint16
	DelayTimer uint8
	SoundTimer uint8

	Opcode       uint16
	Mode         string
	Speed        int
	Instructions uint64
	Ticks        uint64
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerAwaitingKey
	DebuggerFaulted
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerAwaitingKey:
		return "waiting for key"
	case DebuggerFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	DebuggerState DebuggerState
	Keys          [16]bool
	Fault         string // empty unless DebuggerState is DebuggerFaulted
}
