package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// progressInterval is how often, in ticks, progress is logged.
const progressInterval = 60

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.BackendConfig
	tickCount      int
	maxTicks       int
	snapshotConfig SnapshotConfig
	lastSnapshot   int
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N ticks
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
	Scale     int    // Upscaling factor of saved PNGs
}

func New(maxTicks int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxTicks:       maxTicks,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config
	h.tickCount = 0
	h.lastSnapshot = 0

	if h.maxTicks <= 0 {
		return fmt.Errorf("headless mode requires a positive tick count, got %d", h.maxTicks)
	}

	slog.Info("Running headless mode",
		"ticks", h.maxTicks,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update counts a tick and handles snapshots. Once the tick budget is spent
// a quit event is emitted.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.tickCount++

	if h.snapshotConfig.Enabled && h.tickCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.tickCount%progressInterval == 0 {
		slog.Debug("Tick progress", "completed", h.tickCount, "total", h.maxTicks)
	}

	if h.tickCount < h.maxTicks {
		return nil, nil
	}

	// Save final snapshot if enabled and we haven't just saved one
	if h.snapshotConfig.Enabled && h.lastSnapshot != h.tickCount {
		h.saveSnapshot(frame)
	}

	if h.snapshotConfig.Enabled {
		slog.Info("Headless execution completed", "ticks", h.tickCount, "png_snapshots_saved_to", h.snapshotConfig.Directory)
	} else {
		slog.Info("Headless execution completed", "ticks", h.tickCount)
	}

	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// TickCount returns the number of updates processed so far.
func (h *Backend) TickCount() int {
	return h.tickCount
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string, scale int) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Scale:    scale,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chip8-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	// Extract ROM name for snapshot filenames
	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current tick
func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	h.lastSnapshot = h.tickCount
	pngBaseName := fmt.Sprintf("%s_tick_%d", h.snapshotConfig.ROMName, h.tickCount)

	if err := debug.SaveFramePNGToDir(frame, pngBaseName, h.snapshotConfig.Directory, h.snapshotConfig.Scale); err != nil {
		slog.Error("Failed to save PNG snapshot", "tick", h.tickCount, "error", err)
	}
}
