package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypad_PressRelease(t *testing.T) {
	k := NewKeypad()

	k.Press(0x7)
	assert.True(t, k.IsKeyPressed(0x7))
	assert.Equal(t, uint8(0x7), k.LatestKey())

	k.Press(0x3)
	assert.Equal(t, uint8(0x3), k.LatestKey())

	k.Release(0x7)
	assert.False(t, k.IsKeyPressed(0x7))
	assert.True(t, k.IsKeyPressed(0x3))
	assert.Equal(t, uint8(0x3), k.LatestKey(), "release does not change latest key")
}

func TestKeypad_CodesAreMasked(t *testing.T) {
	k := NewKeypad()
	k.Press(0x1A)
	assert.True(t, k.IsKeyPressed(0xA))
	assert.Equal(t, uint8(0xA), k.LatestKey())
}

func TestKeypad_AwaitKeypress(t *testing.T) {
	testCases := []struct {
		desc          string
		heldBefore    bool
		expectPending bool
	}{
		{desc: "new press satisfies the wait", heldBefore: false, expectPending: true},
		{desc: "key already held does not satisfy the wait", heldBefore: true, expectPending: false},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			k := NewKeypad()
			if tC.heldBefore {
				k.Press(0x5)
			}

			k.AwaitKeypress()
			assert.True(t, k.Awaiting())
			assert.False(t, k.ResumePending())

			k.Press(0x5)
			assert.Equal(t, tC.expectPending, k.ResumePending())
			assert.Equal(t, !tC.expectPending, k.Awaiting())
		})
	}
}

func TestKeypad_AcknowledgeResume(t *testing.T) {
	k := NewKeypad()
	k.AwaitKeypress()
	k.Press(0x2)
	assert.True(t, k.ResumePending())

	k.AcknowledgeResume()
	assert.False(t, k.ResumePending())
	assert.False(t, k.Awaiting())

	// presses outside a wait never flag a resume
	k.Release(0x2)
	k.Press(0x2)
	assert.False(t, k.ResumePending())
}

func TestKeypad_Reset(t *testing.T) {
	k := NewKeypad()
	k.Press(0x1)
	k.AwaitKeypress()
	k.Reset()

	assert.False(t, k.IsKeyPressed(0x1))
	assert.False(t, k.Awaiting())
	assert.Equal(t, uint8(0), k.LatestKey())
}
