// Package loader reads CHIP-8 programs from disk and watches them for changes.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/memory"
)

// reloadDelay coalesces the burst of events an editor or compiler produces on save.
const reloadDelay = 100 * time.Millisecond

// ReadProgram reads a program image, rejecting files that cannot fit in memory.
func ReadProgram(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(data) > addr.MaxProgramSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, max is %d", memory.ErrProgramTooLarge, path, len(data), addr.MaxProgramSize)
	}

	return data, nil
}

// Watch sends the program again every time the file at path changes.
// The channel is closed once ctx is done.
func Watch(ctx context.Context, path string) (<-chan []byte, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	programs := make(chan []byte)
	go func() {
		defer close(programs)
		defer watcher.Close()

		var reload <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == path && !ev.IsAttrib() && !ev.IsDelete() {
					reload = time.After(reloadDelay)
				}
			case err := <-watcher.Error:
				slog.Warn("Program watcher error", "error", err)
			case <-reload:
				reload = nil
				program, err := ReadProgram(path)
				if err != nil {
					slog.Error("Failed to reload program", "path", path, "error", err)
					break
				}
				slog.Info("Program changed, reloading", "path", filepath.Base(path), "bytes", len(program))
				select {
				case programs <- program:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return programs, nil
}
