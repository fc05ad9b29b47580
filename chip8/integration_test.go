package chip8_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

type IntegrationTestCase struct {
	Name     string
	Program  []uint16
	MaxTicks int
	Expected func() *video.FrameBuffer
	VF       uint8
}

// drawGlyph draws a hex digit the way DRW would on an empty frame.
func drawGlyph(fb *video.FrameBuffer, digit uint8, x, y int) {
	for row, b := range memory.Glyph(digit) {
		for col := 0; col < 8; col++ {
			if b&(0x80>>col) != 0 {
				fb.SetPixel(x+col, y+row)
			}
		}
	}
}

func GetIntegrationTests() []IntegrationTestCase {
	return []IntegrationTestCase{
		{
			Name: "hex glyph grid",
			Program: []uint16{
				0x6000, // LD V0, 0
				0x6100, // LD V1, 0
				0x6200, // LD V2, 0
				0xF029, // LD F, V0
				0xD125, // DRW V1, V2, 5
				0x7001, // ADD V0, 1
				0x7105, // ADD V1, 5
				0x4008, // SNE V0, 8
				0x221C, // CALL newline
				0x4010, // SNE V0, 16
				0x121A, // JP halt
				0x1206, // JP draw
				0x0000,
				0x121A, // halt: JP halt
				0x6100, // newline: LD V1, 0
				0x7206, // ADD V2, 6
				0x00EE, // RET
			},
			MaxTicks: 20,
			Expected: func() *video.FrameBuffer {
				fb := video.NewFrameBuffer()
				for digit := uint8(0); digit < 16; digit++ {
					drawGlyph(fb, digit, int(digit%8)*5, int(digit/8)*6)
				}
				return fb
			},
		},
		{
			Name: "bcd score",
			Program: []uint16{
				0x609D, // LD V0, 157
				0xA300, // LD I, 0x300
				0xF033, // LD B, V0
				0xF265, // LD V2, [I]
				0x6314, // LD V3, 20
				0x640A, // LD V4, 10
				0xF029, // LD F, V0
				0xD345, // DRW V3, V4, 5
				0x7305, // ADD V3, 5
				0xF129, // LD F, V1
				0xD345, // DRW V3, V4, 5
				0x7305, // ADD V3, 5
				0xF229, // LD F, V2
				0xD345, // DRW V3, V4, 5
				0x121C, // JP halt
			},
			MaxTicks: 5,
			Expected: func() *video.FrameBuffer {
				fb := video.NewFrameBuffer()
				drawGlyph(fb, 1, 20, 10)
				drawGlyph(fb, 5, 25, 10)
				drawGlyph(fb, 7, 30, 10)
				return fb
			},
		},
		{
			Name: "sprite drawn twice is erased",
			Program: []uint16{
				0x6A3E, // LD VA, 62
				0x6B1E, // LD VB, 30
				0xF029, // LD F, V0
				0xDAB5, // DRW VA, VB, 5
				0xDAB5, // DRW VA, VB, 5
				0x120A, // JP halt
			},
			MaxTicks: 3,
			Expected: video.NewFrameBuffer,
			VF:       1,
		},
	}
}

func runIntegrationTest(t *testing.T, testCase IntegrationTestCase) {
	program := make([]byte, 0, len(testCase.Program)*2)
	for _, op := range testCase.Program {
		program = append(program, byte(op>>8), byte(op))
	}

	romPath := filepath.Join(t.TempDir(), "rom.ch8")
	require.NoError(t, os.WriteFile(romPath, program, 0o644))

	emu, err := chip8.NewWithFile(romPath, chip8.DefaultConfig())
	require.NoError(t, err)

	snapshotDir := t.TempDir()
	snapshotConfig, err := headless.CreateSnapshotConfig(testCase.MaxTicks, snapshotDir, romPath, 1)
	require.NoError(t, err)

	b := headless.New(testCase.MaxTicks, snapshotConfig)
	require.NoError(t, b.Init(backend.BackendConfig{Title: testCase.Name}))

	running := true
	for running {
		require.NoError(t, emu.RunOneTick())

		events, err := b.Update(emu.GetCurrentFrame())
		require.NoError(t, err)
		for _, evt := range events {
			if evt.Action == action.EmulatorQuit {
				running = false
			}
		}
	}
	require.NoError(t, b.Cleanup())

	expected := testCase.Expected()
	actual := emu.GetCurrentFrame()
	assert.Equal(t, expected.ToSlice(), actual.ToSlice(), "frame after %d ticks", testCase.MaxTicks)
	assert.Equal(t, testCase.VF, emu.ExtractDebugData().CPU.V[0xF])

	matches, err := filepath.Glob(filepath.Join(snapshotDir, "rom_tick_*.png"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, video.FramebufferWidth, img.Bounds().Dx())
	assert.Equal(t, video.FramebufferHeight, img.Bounds().Dy())
}

func TestIntegration(t *testing.T) {
	for _, testCase := range GetIntegrationTests() {
		t.Run(testCase.Name, func(t *testing.T) {
			runIntegrationTest(t, testCase)
		})
	}
}
