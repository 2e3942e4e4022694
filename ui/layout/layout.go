// Package layout implements the box layout engine used by the
// terminal host. Units are character cells.
//
// The engine performs two passes:
//  1. Measure: computes minimum sizes bottom-up.
//  2. Layout: assigns rectangles top-down with flex distribution.
//
// Containers: vbox, hbox, row. Leaves: text, button, checkbox,
// textbox, select, rect, spacer. Unknown types measure like a vbox.
package layout

import (
	"image"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/elizafairlady/exercises/ui/proto"
	"github.com/elizafairlady/exercises/ui/view"
)

// RNode is a resolved node used for layout and painting.
type RNode struct {
	ID       string
	Type     string
	Props    map[string]string
	Parent   *RNode
	Children []*RNode

	Rect image.Rectangle // assigned rectangle
	MinW int
	MinH int
	Flex int // 0 = fixed
}

// Config holds layout defaults.
type Config struct {
	// Measure returns the cell width and height of text. Nil means
	// runewidth over newline-separated lines.
	Measure    func(text string) (w, h int)
	DefaultPad int
	DefaultGap int
	// TextBoxW is the minimum width of a textbox.
	TextBoxW int
}

// DefaultConfig returns the terminal defaults.
func DefaultConfig() *Config {
	return &Config{TextBoxW: 20}
}

// Decorations around widget text, in cells.
const (
	ButtonDecor   = 4 // "[ " text " ]"
	CheckboxDecor = 4 // "[x] " text
	SelectDecor   = 4 // "< " value " >"
)

// Build creates an RNode tree from a proto.Tree and measures it.
func Build(t *proto.Tree, conf *Config) *RNode {
	if t == nil || t.Nodes[t.Root] == nil {
		return nil
	}
	root := buildNode(t, t.Root, nil, make(map[string]bool))
	Measure(root, conf)
	return root
}

func buildNode(t *proto.Tree, id string, parent *RNode, seen map[string]bool) *RNode {
	pn := t.Nodes[id]
	if pn == nil || seen[id] {
		return nil
	}
	seen[id] = true
	rn := &RNode{
		ID:     pn.ID,
		Type:   pn.Type,
		Props:  pn.Props,
		Parent: parent,
		Flex:   propInt(pn.Props, "flex", 0),
	}
	for _, cid := range pn.Children {
		if c := buildNode(t, cid, rn, seen); c != nil {
			rn.Children = append(rn.Children, c)
		}
	}
	return rn
}

// --- Measure pass ---

func (conf *Config) measure(text string) (int, int) {
	if conf.Measure != nil {
		return conf.Measure(text)
	}
	return MeasureText(text)
}

// MeasureText returns the display width of the widest line of text
// and the number of lines.
func MeasureText(text string) (w, h int) {
	lines := strings.Split(text, "\n")
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	return w, len(lines)
}

// Measure computes minimum sizes bottom-up.
func Measure(n *RNode, conf *Config) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		Measure(c, conf)
	}

	pad := propInt(n.Props, "pad", conf.DefaultPad)
	gap := propInt(n.Props, "gap", conf.DefaultGap)
	var w, h int

	switch n.Type {
	case "hbox", "row":
		for i, c := range n.Children {
			w += c.MinW
			h = max(h, c.MinH)
			if i > 0 {
				w += gap
			}
		}
	case "text":
		w, h = conf.measure(n.Props["text"])
	case "button":
		w, h = conf.measure(n.Props["text"])
		w += ButtonDecor
	case "checkbox":
		w, h = conf.measure(n.Props["text"])
		w += CheckboxDecor
	case "textbox":
		w, _ = conf.measure(n.Props["text"])
		w = max(w+1, conf.TextBoxW)
		h = 1
	case "select":
		for _, o := range view.Options(n.Props) {
			ow, _ := conf.measure(o)
			w = max(w, ow)
		}
		w += SelectDecor
		h = 1
	case "rect":
		w, h = 1, 1
	case "spacer":
		if n.Flex == 0 {
			n.Flex = 1
		}
	default: // vbox and unknown
		for i, c := range n.Children {
			w = max(w, c.MinW)
			h += c.MinH
			if i > 0 {
				h += gap
			}
		}
	}
	n.MinW = max(w+2*pad, propInt(n.Props, "minw", 0))
	n.MinH = max(h+2*pad, propInt(n.Props, "minh", 0))
}

// --- Layout pass ---

// Layout assigns rectangles to the tree, starting from bounds.
func Layout(n *RNode, bounds image.Rectangle, conf *Config) {
	if n == nil {
		return
	}
	n.Rect = bounds

	pad := propInt(n.Props, "pad", conf.DefaultPad)
	gap := propInt(n.Props, "gap", conf.DefaultGap)
	inner := image.Rect(
		bounds.Min.X+pad, bounds.Min.Y+pad,
		bounds.Max.X-pad, bounds.Max.Y-pad,
	)

	switch n.Type {
	case "hbox", "row":
		layoutBox(n.Children, inner, gap, false, conf)
	default:
		layoutBox(n.Children, inner, gap, true, conf)
	}
}

// layoutBox distributes space among children along Y when vertical,
// otherwise along X. Flex children share what fixed children leave.
func layoutBox(children []*RNode, bounds image.Rectangle, gap int, vertical bool, conf *Config) {
	if len(children) == 0 {
		return
	}

	avail := bounds.Dx()
	if vertical {
		avail = bounds.Dy()
	}

	fixed := gap * (len(children) - 1)
	totalFlex := 0
	for _, c := range children {
		switch {
		case c.Flex > 0:
			totalFlex += c.Flex
		case vertical:
			fixed += c.MinH
		default:
			fixed += c.MinW
		}
	}
	flexSpace := max(avail-fixed, 0)

	pos := bounds.Min.X
	if vertical {
		pos = bounds.Min.Y
	}
	for _, c := range children {
		size := c.MinW
		if vertical {
			size = c.MinH
		}
		if c.Flex > 0 && totalFlex > 0 {
			size = max(size, flexSpace*c.Flex/totalFlex)
		}

		var r image.Rectangle
		if vertical {
			r = image.Rect(bounds.Min.X, pos, bounds.Max.X, pos+size)
		} else {
			r = image.Rect(pos, bounds.Min.Y, pos+size, bounds.Max.Y)
		}
		if maxw := propInt(c.Props, "maxw", 0); maxw > 0 && r.Dx() > maxw {
			r.Max.X = r.Min.X + maxw
		}
		if maxh := propInt(c.Props, "maxh", 0); maxh > 0 && r.Dy() > maxh {
			r.Max.Y = r.Min.Y + maxh
		}

		Layout(c, r, conf)
		pos += size + gap
	}
}

// --- Queries ---

func propInt(props map[string]string, key string, def int) int {
	v, ok := props[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Flatten returns all nodes in depth-first order.
func Flatten(n *RNode) []*RNode {
	if n == nil {
		return nil
	}
	result := []*RNode{n}
	for _, c := range n.Children {
		result = append(result, Flatten(c)...)
	}
	return result
}

// Find returns the node with the given ID, or nil.
func Find(n *RNode, id string) *RNode {
	for _, rn := range Flatten(n) {
		if rn.ID == id {
			return rn
		}
	}
	return nil
}

// HitTest finds the deepest interactive node containing pt.
func HitTest(n *RNode, pt image.Point) *RNode {
	if n == nil || !pt.In(n.Rect) {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := HitTest(n.Children[i], pt); hit != nil {
			return hit
		}
	}
	if Focusable(n) {
		return n
	}
	return nil
}

// Focusable reports whether n can take keyboard focus.
func Focusable(n *RNode) bool {
	if n.Props["enabled"] == "0" {
		return false
	}
	if n.Props["focusable"] == "1" {
		return true
	}
	switch n.Type {
	case "button", "checkbox", "textbox", "select":
		return true
	}
	return false
}

func focusables(root *RNode) []string {
	var ids []string
	for _, n := range Flatten(root) {
		if Focusable(n) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// NextFocusable returns the focusable node after current, wrapping.
// An unknown or empty current yields the first focusable node.
func NextFocusable(root *RNode, current string) string {
	ids := focusables(root)
	if len(ids) == 0 {
		return ""
	}
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// PrevFocusable returns the focusable node before current, wrapping.
// An unknown or empty current yields the last focusable node.
func PrevFocusable(root *RNode, current string) string {
	ids := focusables(root)
	if len(ids) == 0 {
		return ""
	}
	for i, id := range ids {
		if id == current {
			return ids[(i-1+len(ids))%len(ids)]
		}
	}
	return ids[len(ids)-1]
}
