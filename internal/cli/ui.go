// Package cli renders daemon state for human-readable terminal output. The
// plain data travels over IPC; everything here is presentation.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary accents
	colorGreen  = lipgloss.Color("35")  // success, running
	colorYellow = lipgloss.Color("220") // warnings, stopped
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted detail
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleZone    = lipgloss.NewStyle().Foreground(colorCyan)
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleIconOK  = lipgloss.NewStyle().Foreground(colorGreen)
	styleKeyCell = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconDot     = "·"
)

// Successf prints a one-line confirmation with a success icon.
func Successf(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconOK.Render(iconSuccess)+" "+msg)
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, styleTitle.Render(s))
}

func keyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, "  "+styleKeyCell.Render(key)+" "+styleValue.Render(value))
}

func detail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}
