package chip8

import (
	"testing"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
)

// benchProgram redraws a glyph forever: LD F, V0; DRW V1, V2, 5; ADD V1, 1; JP 0x200
var benchProgram = []byte{0xF0, 0x29, 0xD1, 0x25, 0x71, 0x01, 0x12, 0x00}

func BenchmarkMachineHeadless(b *testing.B) {
	cases := []struct {
		name  string
		speed int
		ticks int
	}{
		{"default_speed_100", DefaultConfig().Speed, 100},
		{"fast_1000", 100, 1000},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			m := New(Config{Speed: tc.speed, Seed: 1})
			if err := m.LoadProgramToMemory(benchProgram); err != nil {
				b.Fatalf("Failed to load program: %v", err)
			}

			// Use large tick count to avoid the quit condition
			hBackend := headless.New(tc.ticks*(b.N+1), headless.SnapshotConfig{})
			if err := hBackend.Init(backend.BackendConfig{Title: "Benchmark"}); err != nil {
				b.Fatalf("Failed to initialize backend: %v", err)
			}
			defer hBackend.Cleanup()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				for tick := 0; tick < tc.ticks; tick++ {
					if err := m.RunOneTick(); err != nil {
						b.Fatalf("Tick failed: %v", err)
					}
					if _, err := hBackend.Update(m.GetCurrentFrame()); err != nil {
						b.Fatalf("Backend update failed: %v", err)
					}
				}
			}
		})
	}
}
