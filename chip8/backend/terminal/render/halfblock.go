package render

import "github.com/valerio/go-chip8/chip8/display"

// HalfBlockChar returns the character that draws two vertically stacked
// pixels in one terminal cell, and whether anything is lit at all.
// The cell is drawn in the foreground color over the background color.
func HalfBlockChar(top, bottom bool) (rune, bool) {
	switch {
	case top && bottom:
		return display.FullBlock, true
	case top:
		return display.UpperHalfBlock, true
	case bottom:
		return display.LowerHalfBlock, true
	default:
		return ' ', false
	}
}
