// Package plain renders a view tree as styled text with lipgloss. It
// backs one-shot dumps, scripted runs, and the 9P screen file.
package plain

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/elizafairlady/exercises/ui/layout"
	"github.com/elizafairlady/exercises/ui/proto"
	"github.com/elizafairlady/exercises/ui/theme"
	"github.com/elizafairlady/exercises/ui/view"
)

// Renderer turns trees into text.
type Renderer struct {
	lg    *lipgloss.Renderer
	theme *theme.Theme

	// Width is used for rules and centered text.
	Width int
	// TextBoxW is the minimum inner width of a textbox.
	TextBoxW int
}

// New returns a renderer whose color profile is detected from w.
// A nil theme means theme.Default.
func New(w io.Writer, th *theme.Theme) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	return &Renderer{
		lg:       lipgloss.NewRenderer(w),
		theme:    th,
		Width:    40,
		TextBoxW: layout.DefaultConfig().TextBoxW,
	}
}

// SetProfile forces a color profile; termenv.Ascii yields plain text.
func (r *Renderer) SetProfile(p termenv.Profile) {
	r.lg.SetColorProfile(p)
}

// Render draws t with focus highlighted. Trailing blanks are trimmed
// from every line.
func (r *Renderer) Render(t *proto.Tree, focus string) string {
	if t == nil || t.Nodes[t.Root] == nil {
		return ""
	}
	out := r.node(t, t.Nodes[t.Root], focus, make(map[string]bool))
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

func (r *Renderer) style(n *proto.Node, focus, body string) lipgloss.Style {
	s := r.lg.NewStyle()
	p := n.Props
	if fg := p["fg"]; fg != "" {
		s = s.Foreground(r.theme.Lipgloss(fg))
	}
	if bg := p["bg"]; bg != "" && n.Type != "rect" {
		s = s.Background(r.theme.Lipgloss(bg))
	}
	if p["bold"] == "1" {
		s = s.Bold(true)
	}
	if pad := atoi(p["pad"]); pad > 0 {
		s = s.Padding(pad/2, pad)
	}
	w := lipgloss.Width(body) + 2*atoi(p["pad"])
	if minw := atoi(p["minw"]); minw > w {
		s = s.Width(minw)
	}
	if p["align"] == "center" {
		s = s.Width(max(r.Width, w)).Align(lipgloss.Center)
	}
	if n.ID == focus && focus != "" {
		s = s.Reverse(true).Foreground(r.theme.Lipgloss(theme.Focus))
	}
	return s
}

func (r *Renderer) node(t *proto.Tree, n *proto.Node, focus string, seen map[string]bool) string {
	if seen[n.ID] {
		return ""
	}
	seen[n.ID] = true

	gap := atoi(n.Props["gap"])
	var parts []string
	for _, cid := range n.Children {
		if c := t.Nodes[cid]; c != nil && c.Type != "spacer" {
			parts = append(parts, r.node(t, c, focus, seen))
		}
	}

	var body string
	switch n.Type {
	case "hbox", "row":
		sep := strings.Repeat(" ", gap)
		var row []string
		for i, p := range parts {
			if i > 0 && gap > 0 {
				row = append(row, sep)
			}
			row = append(row, p)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Center, row...)
	case "text":
		body = n.Props["text"]
	case "button":
		body = "[ " + n.Props["text"] + " ]"
	case "checkbox":
		mark := "[ ] "
		if n.Props["checked"] == "1" {
			mark = "[x] "
		}
		body = mark + n.Props["text"]
	case "textbox":
		body = r.textbox(n)
	case "select":
		body = "< " + n.Props["value"] + " >"
		if opts := view.Options(n.Props); len(opts) > 1 {
			body += "  (" + strings.Join(opts, " | ") + ")"
		}
	case "rect":
		body = r.lg.NewStyle().Foreground(r.theme.Lipgloss(theme.Border)).
			Render(strings.Repeat("─", r.Width))
	default:
		body = strings.Join(parts, strings.Repeat("\n", gap+1))
	}
	return r.style(n, focus, body).Render(body)
}

func (r *Renderer) textbox(n *proto.Node) string {
	text := n.Props["text"]
	if text == "" && n.Props["placeholder"] != "" {
		ph := r.lg.NewStyle().Foreground(r.theme.Lipgloss(theme.Dim)).Render(n.Props["placeholder"])
		w := max(r.TextBoxW, runewidth.StringWidth(n.Props["placeholder"])+1)
		return "[" + ph + strings.Repeat(" ", w-runewidth.StringWidth(n.Props["placeholder"])) + "]"
	}
	w := max(r.TextBoxW, runewidth.StringWidth(text)+1)
	return "[" + runewidth.FillRight(text, w) + "]"
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
