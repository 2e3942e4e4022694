// Package theme defines the color model shared by the terminal and
// plain renderers. Widgets name colors by role ("dim", "border") or by
// palette name ("paleblue"); the theme resolves both to RGB and hands
// out tcell and lipgloss colors.
package theme

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
)

// Palette colors as 0xRRGGBB, after the Acme look.
var palette = map[string]uint32{
	"black":      0x000000,
	"white":      0xFFFFFF,
	"red":        0xCC3333,
	"green":      0x448844,
	"blue":       0x0000BB,
	"yellow":     0xEEEE9E,
	"paleyellow": 0xFFFFAA,
	"palegreen":  0xAAFFAA,
	"paleblue":   0xAAFFFF,
	"greyblue":   0x005DBB,
	"acmeyellow": 0xFFFFEA,
	"acmecyan":   0xEAFFFF,
	"acmeborder": 0x888888,
	"acmetext":   0x333333,
	"acmedim":    0x999999,
	"acmefocus":  0x4488CC,
	"acmebutton": 0xF0F0F0,
	"acmeinput":  0xFFFFFE,
	"acmehigh":   0xDDEEDD,
}

// Role names.
const (
	Background = "bg"
	Foreground = "fg"
	Dim        = "dim"
	Border     = "border"
	ButtonBg   = "buttonbg"
	ButtonFg   = "buttonfg"
	InputBg    = "inputbg"
	InputFg    = "inputfg"
	Focus      = "focus"
	Highlight  = "high"
)

// Theme maps roles to colors.
type Theme struct {
	roles map[string]uint32
}

// Default returns the Acme-inspired theme: cream background, soft
// black text, calm blue focus.
func Default() *Theme {
	return &Theme{roles: map[string]uint32{
		Background: palette["acmeyellow"],
		Foreground: palette["acmetext"],
		Dim:        palette["acmedim"],
		Border:     palette["acmeborder"],
		ButtonBg:   palette["acmebutton"],
		ButtonFg:   palette["acmetext"],
		InputBg:    palette["acmeinput"],
		InputFg:    palette["acmetext"],
		Focus:      palette["acmefocus"],
		Highlight:  palette["acmehigh"],
	}}
}

// Roles returns a copy of the role table.
func (t *Theme) Roles() map[string]uint32 {
	return maps.Clone(t.roles)
}

// Set overrides a role with a color string accepted by ParseColor.
func (t *Theme) Set(role, color string) error {
	if _, ok := t.roles[role]; !ok {
		return fmt.Errorf("theme: unknown role %q", role)
	}
	v, ok := ParseColor(color)
	if !ok {
		return fmt.Errorf("theme: bad color %q for %s", color, role)
	}
	t.roles[role] = v
	return nil
}

// Apply calls Set for every entry of overrides.
func (t *Theme) Apply(overrides map[string]string) error {
	for role, color := range overrides {
		if err := t.Set(role, color); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the RGB value of a role, palette name, or literal.
func (t *Theme) Resolve(name string) (uint32, bool) {
	if v, ok := t.roles[name]; ok {
		return v, true
	}
	return ParseColor(name)
}

// ParseColor parses a palette name, "#RRGGBB", or "0xRRGGBB".
func ParseColor(s string) (uint32, bool) {
	if v, ok := palette[strings.ToLower(s)]; ok {
		return v, true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		hex, ok = strings.CutPrefix(strings.ToLower(s), "0x")
	}
	if !ok || len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// Tcell returns the tcell color for name, or tcell.ColorDefault.
func (t *Theme) Tcell(name string) tcell.Color {
	v, ok := t.Resolve(name)
	if !ok {
		return tcell.ColorDefault
	}
	return tcell.NewHexColor(int32(v))
}

// Lipgloss returns the lipgloss color for name, or an empty color.
func (t *Theme) Lipgloss(name string) lipgloss.TerminalColor {
	v, ok := t.Resolve(name)
	if !ok {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(fmt.Sprintf("#%06X", v))
}
