// Package ui holds the terminal styling used by the CLI. Styles degrade
// to plain text on dumb terminals via termenv's profile detection.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	styleErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleAccent = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleDim    = lipgloss.NewStyle().Faint(true)
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Plain disables coloring, used by --no-color and in tests.
func Plain() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// OK renders a success line.
func OK(format string, args ...any) string {
	return styleOK.Render("✓") + " " + fmt.Sprintf(format, args...)
}

// Warn renders a warning line.
func Warn(format string, args ...any) string {
	return styleWarn.Render("!") + " " + fmt.Sprintf(format, args...)
}

// Error renders a failure line.
func Error(format string, args ...any) string {
	return styleErr.Render("✗") + " " + fmt.Sprintf(format, args...)
}

// Accent highlights an identifier inline.
func Accent(s string) string {
	return styleAccent.Render(s)
}

// Dim de-emphasizes secondary detail.
func Dim(s string) string {
	return styleDim.Render(s)
}

// Header renders a section title.
func Header(s string) string {
	return styleHeader.Render(s)
}

// Tree renders an indented tree line with unicode guides.
func Tree(depth int, last bool, label string) string {
	if depth == 0 {
		return label
	}
	var b strings.Builder
	for i := 1; i < depth; i++ {
		b.WriteString("│  ")
	}
	if last {
		b.WriteString("└─ ")
	} else {
		b.WriteString("├─ ")
	}
	b.WriteString(label)
	return b.String()
}
