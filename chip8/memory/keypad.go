package memory

import "log/slog"

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keypad represents the 16 key hex keypad.
// It is the only writer of key state; the CPU reads it and uses the
// awaiting/resume flags to suspend on a key wait.
type Keypad struct {
	held   [KeyCount]bool
	latest uint8

	awaiting      bool
	resumePending bool
}

// NewKeypad creates a keypad with no keys held.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks the key as held and records it as the latest pressed key.
// If the CPU is waiting for a key, the wait is satisfied and a resume is flagged.
func (k *Keypad) Press(code uint8) {
	code &= 0xF
	wasHeld := k.held[code]
	k.held[code] = true
	k.latest = code

	if k.awaiting && !wasHeld {
		k.awaiting = false
		k.resumePending = true
		slog.Debug("Key wait satisfied", "key", code)
	}
}

// Release marks the key as no longer held.
func (k *Keypad) Release(code uint8) {
	k.held[code&0xF] = false
}

// IsKeyPressed reports whether the key is currently held.
func (k *Keypad) IsKeyPressed(code uint8) bool {
	return k.held[code&0xF]
}

// LatestKey returns the most recently pressed key.
func (k *Keypad) LatestKey() uint8 {
	return k.latest
}

// AwaitKeypress requests that the next key press flags a resume.
func (k *Keypad) AwaitKeypress() {
	k.awaiting = true
	k.resumePending = false
}

// Awaiting reports whether a key press is being waited for.
func (k *Keypad) Awaiting() bool {
	return k.awaiting
}

// ResumePending reports whether a key press satisfied a wait and the CPU has not consumed it yet.
func (k *Keypad) ResumePending() bool {
	return k.resumePending
}

// AcknowledgeResume clears the pending resume once the CPU has written the key back.
func (k *Keypad) AcknowledgeResume() {
	k.resumePending = false
}

// Reset releases all keys and clears any pending wait.
func (k *Keypad) Reset() {
	*k = Keypad{}
}
