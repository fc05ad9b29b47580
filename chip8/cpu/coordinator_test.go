package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadProgram writes opcodes at the program start address.
func (r *testRig) loadProgram(t *testing.T, opcodes ...uint16) {
	t.Helper()
	program := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		program = append(program, byte(op>>8), byte(op))
	}
	require.NoError(t, r.mem.LoadProgram(program))
}

func TestCPU_Step(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0x6A2F, 0x7A01)

	require.NoError(t, rig.cpu.Step())
	require.NoError(t, rig.cpu.Step())

	assert.Equal(t, uint8(0x30), rig.cpu.GetV(0xA))
	assert.Equal(t, uint16(0x204), rig.cpu.GetPC())
	assert.Equal(t, uint16(0x7A01), rig.cpu.GetCurrentOpcode())
	assert.Equal(t, uint64(2), rig.cpu.GetInstructions())
}

func TestCPU_RunTick_speed(t *testing.T) {
	testCases := []struct {
		desc  string
		speed int
		want  uint16
	}{
		{desc: "one per tick", speed: 1, want: 0x202},
		{desc: "default", speed: DefaultSpeed, want: 0x200 + 2*DefaultSpeed},
		{desc: "clamped to one", speed: 0, want: 0x202},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			rig := newTestRig(WithSpeed(tC.speed))
			// every slot is ADD V0, 1
			ops := make([]uint16, 64)
			for i := range ops {
				ops[i] = 0x7001
			}
			rig.loadProgram(t, ops...)

			require.NoError(t, rig.cpu.RunTick())
			assert.Equal(t, tC.want, rig.cpu.GetPC())
			assert.Equal(t, uint64(1), rig.cpu.GetTicks())
		})
	}
}

func TestCPU_RunTick_timers(t *testing.T) {
	rig := newTestRig(WithSpeed(1))
	// LD V0, 2; LD DT, V0; LD ST, V0; JP 0x206
	rig.loadProgram(t, 0x6002, 0xF015, 0xF018, 0x1206)

	require.NoError(t, rig.cpu.RunTick())
	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, uint8(1), rig.cpu.GetDelayTimer(), "set to 2 then decremented in the same tick")

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, uint8(0), rig.cpu.GetDelayTimer())
	assert.Equal(t, uint8(1), rig.cpu.GetSoundTimer())

	for i := 0; i < 5; i++ {
		require.NoError(t, rig.cpu.RunTick())
	}
	assert.Equal(t, uint8(0), rig.cpu.GetDelayTimer(), "timers stop at zero")
	assert.Equal(t, uint8(0), rig.cpu.GetSoundTimer())
}

func TestCPU_TogglePause(t *testing.T) {
	rig := newTestRig(WithSpeed(1))
	rig.loadProgram(t, 0x7001, 0x7001, 0x7001)
	rig.cpu.delayTimer = 10

	rig.cpu.TogglePause()
	assert.Equal(t, Paused, rig.cpu.GetMode())

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, uint16(0x200), rig.cpu.GetPC(), "paused CPU does not execute")
	assert.Equal(t, uint8(10), rig.cpu.GetDelayTimer(), "paused CPU does not tick timers")

	rig.cpu.TogglePause()
	assert.Equal(t, Running, rig.cpu.GetMode())

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, uint16(0x202), rig.cpu.GetPC())
	assert.Equal(t, uint8(9), rig.cpu.GetDelayTimer())
}

func TestCPU_keyWait(t *testing.T) {
	rig := newTestRig(WithSpeed(4))
	// LD V3, K; LD V4, 1; JP 0x204
	rig.loadProgram(t, 0xF30A, 0x6401, 0x1204)
	rig.cpu.delayTimer = 5

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, AwaitingKey, rig.cpu.GetMode())
	assert.Equal(t, uint16(0x202), rig.cpu.GetPC())
	assert.Equal(t, uint8(0), rig.cpu.GetV(4), "no instructions run after the wait starts")
	assert.Equal(t, uint8(5), rig.cpu.GetDelayTimer(), "timers frozen while waiting")

	for i := 0; i < 3; i++ {
		require.NoError(t, rig.cpu.RunTick())
	}
	assert.Equal(t, AwaitingKey, rig.cpu.GetMode())
	assert.Equal(t, uint8(5), rig.cpu.GetDelayTimer())

	rig.keypad.Press(0x7)
	require.NoError(t, rig.cpu.RunTick())

	assert.Equal(t, Running, rig.cpu.GetMode())
	assert.Equal(t, uint8(7), rig.cpu.GetV(3))
	assert.Equal(t, uint8(1), rig.cpu.GetV(4), "execution continues in the resuming tick")
	assert.Equal(t, uint8(4), rig.cpu.GetDelayTimer())
	assert.False(t, rig.keypad.ResumePending())
}

func TestCPU_keyWaitIgnoresHeldKey(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0xF00A, 0x1202)
	rig.keypad.Press(0x2)

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, AwaitingKey, rig.cpu.GetMode())

	rig.keypad.Press(0x2)
	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, AwaitingKey, rig.cpu.GetMode(), "a key already held does not satisfy the wait")

	rig.keypad.Release(0x2)
	rig.keypad.Press(0x2)
	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, Running, rig.cpu.GetMode())
	assert.Equal(t, uint8(2), rig.cpu.GetV(0))
}

func TestCPU_pauseDuringKeyWait(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0xF50A, 0x1202)

	require.NoError(t, rig.cpu.RunTick())
	rig.cpu.TogglePause()
	assert.Equal(t, Paused, rig.cpu.GetMode())

	rig.keypad.Press(0xC)
	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, Paused, rig.cpu.GetMode())
	assert.Equal(t, uint8(0), rig.cpu.GetV(5))

	rig.cpu.TogglePause()
	assert.Equal(t, AwaitingKey, rig.cpu.GetMode())

	require.NoError(t, rig.cpu.RunTick())
	assert.Equal(t, Running, rig.cpu.GetMode())
	assert.Equal(t, uint8(0xC), rig.cpu.GetV(5))
}

func TestCPU_faultIsLatched(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0x00EE, 0x6001)

	err := rig.cpu.RunTick()
	require.ErrorIs(t, err, ErrStackUnderflow)

	again := rig.cpu.RunTick()
	assert.Same(t, err, again)
	assert.Equal(t, uint8(0), rig.cpu.GetV(0), "nothing runs after a fault")
	assert.Equal(t, err, rig.cpu.Fault())

	rig.cpu.Reset()
	assert.NoError(t, rig.cpu.Fault())
	assert.Equal(t, uint16(0x200), rig.cpu.GetPC())
}

func TestCPU_unknownOpcodeFaultsTick(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0x6001, 0x5121)

	err := rig.cpu.RunTick()
	require.ErrorIs(t, err, ErrUnknownOpcode)

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, uint16(0x5121), fault.Opcode)
	assert.Equal(t, uint8(1), rig.cpu.GetV(0))
}

func TestCPU_Step_addressOutOfRange(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0x6001)
	rig.cpu.pc = 0x1000

	err := rig.cpu.Step()
	require.True(t, errors.Is(err, ErrAddressOutOfRange))

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, uint16(0x1000), fault.PC)
	assert.Equal(t, uint8(0), rig.cpu.GetV(0), "nothing executes")
	assert.Same(t, err, rig.cpu.RunTick(), "fault is latched")
}

func TestCPU_Reset(t *testing.T) {
	rig := newTestRig()
	rig.loadProgram(t, 0x2300)
	rig.cpu.v[3] = 9
	rig.cpu.i = 0x123
	rig.cpu.soundTimer = 4
	require.NoError(t, rig.cpu.Step())

	rig.cpu.Reset()
	assert.Equal(t, [16]uint8{}, rig.cpu.GetRegisters())
	assert.Equal(t, uint16(0), rig.cpu.GetI())
	assert.Empty(t, rig.cpu.GetStack())
	assert.Equal(t, uint8(0), rig.cpu.GetSoundTimer())
	assert.Equal(t, Running, rig.cpu.GetMode())
	assert.Equal(t, uint64(0), rig.cpu.GetInstructions())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "PAUSED", Paused.String())
	assert.Equal(t, "WAITKEY", AwaitingKey.String())
	assert.Equal(t, "RESUME", ResumePending.String())
}
