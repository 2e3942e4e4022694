package term

import (
	"image"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/elizafairlady/exercises/ui/layout"
	"github.com/elizafairlady/exercises/ui/text"
	"github.com/elizafairlady/exercises/ui/theme"
)

// painter draws a laid-out tree onto a tcell screen.
type painter struct {
	s     tcell.Screen
	th    *theme.Theme
	focus string

	edit   *text.Line
	editID string
}

func (p *painter) base() tcell.Style {
	return tcell.StyleDefault.
		Background(p.th.Tcell(theme.Background)).
		Foreground(p.th.Tcell(theme.Foreground))
}

func (p *painter) paint(root *layout.RNode) {
	p.fill(root.Rect, ' ', p.base())
	p.paintNode(root)
}

func (p *painter) paintNode(n *layout.RNode) {
	if n.Rect.Empty() {
		return
	}
	switch n.Type {
	case "rect":
		p.paintRect(n)
	case "text":
		p.paintText(n)
	case "button":
		p.paintButton(n)
	case "checkbox":
		p.paintCheckbox(n)
	case "textbox":
		p.paintTextbox(n)
	case "select":
		p.paintSelect(n)
	default:
		if bg := n.Props["bg"]; bg != "" {
			p.fill(n.Rect, ' ', p.base().Background(p.th.Tcell(bg)))
		}
		for _, c := range n.Children {
			p.paintNode(c)
		}
	}
}

func (p *painter) paintRect(n *layout.RNode) {
	col := n.Props["bg"]
	if col == "" {
		col = theme.Border
	}
	if n.Rect.Dy() == 1 {
		p.fill(n.Rect, '─', p.base().Foreground(p.th.Tcell(col)))
		return
	}
	p.fill(n.Rect, ' ', p.base().Background(p.th.Tcell(col)))
}

func (p *painter) paintText(n *layout.RNode) {
	st := p.base()
	if fg := n.Props["fg"]; fg != "" {
		st = st.Foreground(p.th.Tcell(fg))
	}
	if bg := n.Props["bg"]; bg != "" {
		st = st.Background(p.th.Tcell(bg))
		p.fill(n.Rect, ' ', st)
	}
	if n.Props["bold"] == "1" {
		st = st.Bold(true)
	}
	pad := propInt(n.Props, "pad")
	r := n.Rect.Inset(pad)
	for i, line := range strings.Split(n.Props["text"], "\n") {
		x := r.Min.X
		if n.Props["align"] == "center" {
			x += max(r.Dx()-runewidth.StringWidth(line), 0) / 2
		}
		p.text(x, r.Min.Y+i, r, line, st)
	}
}

func (p *painter) widget(n *layout.RNode, bgRole, fgRole string) tcell.Style {
	st := p.base().Background(p.th.Tcell(bgRole)).Foreground(p.th.Tcell(fgRole))
	if n.ID == p.focus {
		st = st.Background(p.th.Tcell(theme.Focus)).Foreground(p.th.Tcell(theme.ButtonBg))
	}
	return st
}

func (p *painter) paintButton(n *layout.RNode) {
	st := p.widget(n, theme.ButtonBg, theme.ButtonFg)
	label := "[ " + n.Props["text"] + " ]"
	x := n.Rect.Min.X + max(n.Rect.Dx()-runewidth.StringWidth(label), 0)/2
	p.text(x, n.Rect.Min.Y, n.Rect, label, st)
}

func (p *painter) paintCheckbox(n *layout.RNode) {
	mark := "[ ] "
	if n.Props["checked"] == "1" {
		mark = "[x] "
	}
	st := p.base()
	if n.ID == p.focus {
		st = st.Foreground(p.th.Tcell(theme.Focus)).Bold(true)
	}
	p.text(n.Rect.Min.X, n.Rect.Min.Y, n.Rect, mark+n.Props["text"], st)
}

func (p *painter) paintTextbox(n *layout.RNode) {
	st := p.base().Background(p.th.Tcell(theme.InputBg)).Foreground(p.th.Tcell(theme.InputFg))
	if n.ID == p.focus {
		st = st.Underline(true)
	}
	p.fill(n.Rect, ' ', st)
	val := n.Props["text"]
	if val == "" && n.Props["placeholder"] != "" {
		p.text(n.Rect.Min.X, n.Rect.Min.Y, n.Rect, n.Props["placeholder"], st.Foreground(p.th.Tcell(theme.Dim)))
	} else {
		p.text(n.Rect.Min.X, n.Rect.Min.Y, n.Rect, val, st)
	}
	if n.ID == p.focus {
		col := runewidth.StringWidth(val)
		if p.edit != nil && p.editID == n.ID && p.edit.String() == val {
			col = p.edit.Col()
		}
		cx := min(n.Rect.Min.X+col, n.Rect.Max.X-1)
		p.s.ShowCursor(cx, n.Rect.Min.Y)
	}
}

func (p *painter) paintSelect(n *layout.RNode) {
	st := p.widget(n, theme.ButtonBg, theme.ButtonFg)
	p.fill(image.Rect(n.Rect.Min.X, n.Rect.Min.Y, n.Rect.Max.X, n.Rect.Min.Y+1), ' ', st)
	p.text(n.Rect.Min.X, n.Rect.Min.Y, n.Rect, "< "+n.Props["value"]+" >", st)
}

func (p *painter) fill(r image.Rectangle, c rune, st tcell.Style) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.s.SetContent(x, y, c, nil, st)
		}
	}
}

// text draws s from (x, y), clipped to clip.
func (p *painter) text(x, y int, clip image.Rectangle, s string, st tcell.Style) {
	if y < clip.Min.Y || y >= clip.Max.Y {
		return
	}
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if x+w > clip.Max.X {
			return
		}
		if x >= clip.Min.X {
			p.s.SetContent(x, y, r, nil, st)
		}
		x += w
	}
}

func propInt(props map[string]string, key string) int {
	n, err := strconv.Atoi(props[key])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
