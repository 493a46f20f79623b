package tui

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// detectTerminalSize returns the terminal dimensions used before the first
// WindowSizeMsg arrives. It tries TTY detection, then the COLUMNS/LINES
// environment variables, then falls back to 80x24.
func detectTerminalSize() (width, height int) {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err == nil && w > 0 && h > 0 {
		return w, h
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			width = w
		}
	}
	if lines := os.Getenv("LINES"); lines != "" {
		if h, err := strconv.Atoi(lines); err == nil && h > 0 {
			height = h
		}
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}
