// SPDX-License-Identifier: MIT
package termstyle

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Role is the semantic meaning of a styled value.
type Role int

const (
	Plain Role = iota
	Healthy
	Warn
	Error
	Info
	Muted
)

var roleColors = map[Role]lipgloss.Color{
	Healthy: lipgloss.Color("2"),
	Warn:    lipgloss.Color("3"),
	Error:   lipgloss.Color("1"),
	Info:    lipgloss.Color("4"),
	Muted:   lipgloss.Color("8"),
}

// Palette renders values for one output stream.
type Palette struct {
	enabled bool
	styles  map[Role]lipgloss.Style
}

// NewPalette returns a palette bound to w. When enabled is false every value
// is returned unchanged; otherwise basic ANSI colors are forced.
func NewPalette(w io.Writer, enabled bool) *Palette {
	renderer := lipgloss.NewRenderer(w)
	if enabled {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	styles := make(map[Role]lipgloss.Style, len(roleColors))
	for role, color := range roleColors {
		styles[role] = renderer.NewStyle().Foreground(color)
	}
	return &Palette{enabled: enabled, styles: styles}
}

// Enabled reports whether the palette emits escape sequences.
func (p *Palette) Enabled() bool { return p != nil && p.enabled }

// Render styles value for role.
func (p *Palette) Render(role Role, value string) string {
	if !p.Enabled() || value == "" {
		return value
	}
	style, ok := p.styles[role]
	if !ok {
		return value
	}
	return style.Render(value)
}
