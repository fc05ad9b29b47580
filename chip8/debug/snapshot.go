package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/video"
	"golang.org/x/image/draw"
)

var (
	litColor   = color.RGBA{display.ForegroundR, display.ForegroundG, display.ForegroundB, display.FullAlpha}
	unlitColor = color.RGBA{display.BackgroundR, display.BackgroundG, display.BackgroundB, display.FullAlpha}
)

// TakeSnapshot saves the frame into the working directory, used by the snapshot action.
func TakeSnapshot(frame *video.FrameBuffer, scale int) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	if err := SaveFramePNGToDir(frame, "chip8_snapshot", "", scale); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// FrameToImage converts a framebuffer to an RGBA image, upscaled by scale
// with nearest neighbour sampling so pixels stay square.
func FrameToImage(frame *video.FrameBuffer, scale int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for i, lit := range frame.ToSlice() {
		c := unlitColor
		if lit {
			c = litColor
		}
		idx := i * display.RGBABytesPerPixel
		src.Pix[idx] = c.R
		src.Pix[idx+1] = c.G
		src.Pix[idx+2] = c.B
		src.Pix[idx+3] = c.A
	}

	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth*scale, video.FramebufferHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveFramePNGToDir saves a framebuffer as PNG with timestamp to a specific directory.
// An empty directory means the current working directory.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string, scale int) error {
	img := FrameToImage(frame, scale)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	bounds := img.Bounds()
	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()), "format", "PNG")
	return nil
}
