package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/loader"
	"github.com/valerio/go-chip8/chip8/timing"
)

const (
	backendTerminal = "terminal"
	backendSDL2     = "sdl2"
	backendHeadless = "headless"

	limiterAdaptive = "adaptive"
	limiterTicker   = "ticker"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file",
			EnvVar: "CHIP8_ROM",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "Output backend: terminal, sdl2 or headless",
			Value:  backendTerminal,
			EnvVar: "CHIP8_BACKEND",
		},
		cli.StringFlag{
			Name:   "limiter",
			Usage:  "Frame pacing for interactive backends: adaptive or ticker",
			Value:  limiterAdaptive,
			EnvVar: "CHIP8_LIMITER",
		},
		cli.IntFlag{
			Name:   "ticks",
			Usage:  "Number of ticks to run in headless mode (required for headless)",
			EnvVar: "CHIP8_TICKS",
		},
		cli.IntFlag{
			Name:   "speed",
			Usage:  "Instructions executed per tick",
			Value:  chip8.DefaultConfig().Speed,
			EnvVar: "CHIP8_SPEED",
		},
		cli.Uint64Flag{
			Name:   "seed",
			Usage:  "Seed of the RND instruction (0 = random)",
			EnvVar: "CHIP8_SEED",
		},
		cli.IntFlag{
			Name:   "snapshot-interval",
			Usage:  "Save frame snapshots every N ticks in headless mode (0 = disabled)",
			EnvVar: "CHIP8_SNAPSHOT_INTERVAL",
		},
		cli.StringFlag{
			Name:   "snapshot-dir",
			Usage:  "Directory to save frame snapshots (default: temp directory)",
			EnvVar: "CHIP8_SNAPSHOT_DIR",
		},
		cli.IntFlag{
			Name:   "snapshot-scale",
			Usage:  "Upscaling factor of PNG snapshots",
			Value:  display.DefaultPixelScale,
			EnvVar: "CHIP8_SNAPSHOT_SCALE",
		},
		cli.BoolFlag{
			Name:   "watch",
			Usage:  "Reload the ROM whenever the file changes",
			EnvVar: "CHIP8_WATCH",
		},
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "Show the debug panel on startup",
			EnvVar: "CHIP8_DEBUG",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "CHIP8_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:   "audio",
			Usage:  "Play the buzzer (requires a build with -tags oto)",
			EnvVar: "CHIP8_AUDIO",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}

	backendName := c.String("backend")
	if backendName != backendTerminal {
		// the terminal backend owns its log output, every other backend logs to stderr
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	cfg := chip8.Config{
		Speed: c.Int("speed"),
		Seed:  c.Uint64("seed"),
	}
	machine, err := chip8.NewWithFile(romPath, cfg)
	if err != nil {
		return err
	}

	b, err := createBackend(c, backendName, romPath)
	if err != nil {
		return err
	}

	limiter, err := createLimiter(backendName, c.String("limiter"))
	if err != nil {
		return err
	}
	if ticker, ok := limiter.(*timing.TickerLimiter); ok {
		defer ticker.Stop()
	}

	config := backend.BackendConfig{
		Title:         "CHIP-8 - " + romName(romPath),
		Scale:         display.DefaultPixelScale,
		ShowDebug:     c.Bool("debug"),
		SnapshotScale: c.Int("snapshot-scale"),
		LogLevel:      level,
		DebugProvider: machine,
		Callbacks: backend.BackendCallbacks{
			OnQuit: func() { slog.Info("Quit requested by backend") },
		},
	}
	if err := b.Init(config); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	r := newRunner(machine, b, limiter)

	if c.Bool("audio") {
		player, err := audio.NewPlayer(audio.NewBeeper())
		if err != nil {
			slog.Warn("Audio disabled", "error", err)
		} else {
			defer player.Close()
			r.sound = player
		}
	}

	if c.Bool("watch") {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reloads, err := loader.Watch(ctx, romPath)
		if err != nil {
			return err
		}
		r.reloads = reloads
		slog.Info("Watching ROM for changes", "path", romPath)
	}

	return r.run()
}

// createBackend picks the backend by name.
func createBackend(c *cli.Context, name, romPath string) (backend.Backend, error) {
	switch name {
	case backendHeadless:
		ticks := c.Int("ticks")
		if ticks <= 0 {
			return nil, errors.New("headless mode requires --ticks option with a positive value")
		}
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath, c.Int("snapshot-scale"))
		if err != nil {
			return nil, err
		}
		return headless.New(ticks, snapshotConfig), nil
	case backendSDL2:
		return sdl2.New(), nil
	case backendTerminal:
		return terminal.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q, expected terminal, sdl2 or headless", name)
	}
}

// createLimiter picks the pacing of the run loop. Headless runs are never paced.
func createLimiter(backendName, name string) (timing.Limiter, error) {
	if backendName == backendHeadless {
		return timing.NewNoOpLimiter(), nil
	}

	switch name {
	case limiterAdaptive:
		return timing.NewAdaptiveLimiter(), nil
	case limiterTicker:
		return timing.NewTickerLimiter(), nil
	default:
		return nil, fmt.Errorf("unknown limiter %q, expected adaptive or ticker", name)
	}
}

func romName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
