package term

import (
	"image"
	"slices"
	"strconv"

	"github.com/elizafairlady/exercises/ui/layout"
	"github.com/elizafairlady/exercises/ui/proto"
	"github.com/elizafairlady/exercises/ui/view"
)

// ClickAction generates a semantic action for activating hit, by mouse
// at pt or by keyboard (pt is then hit's origin).
func ClickAction(hit *layout.RNode, button int, pt image.Point) *proto.Action {
	if hit == nil {
		return nil
	}
	a := proto.NewAction("click",
		"id", hit.ID,
		"button", strconv.Itoa(button),
		"x", strconv.Itoa(pt.X),
		"y", strconv.Itoa(pt.Y),
	)
	switch hit.Type {
	case "checkbox":
		a.Kind = "toggle"
		v := "1"
		if hit.Props["checked"] == "1" {
			v = "0"
		}
		a.KVs["value"] = v
	case "button":
		if on := hit.Props["on"]; on != "" {
			a.KVs["action"] = on
		}
		if arg, ok := hit.Props["arg"]; ok {
			a.KVs["arg"] = arg
		}
	}
	return a
}

// KeyAction generates a key action for the focused node.
func KeyAction(focusID, name string, key rune) *proto.Action {
	a := proto.NewAction("key", "id", focusID)
	if name != "" {
		a.KVs["key"] = name
	}
	if key != 0 {
		a.KVs["rune"] = string(key)
	}
	return a
}

// InputAction reports the new contents of a textbox and its cursor.
func InputAction(nodeID, text string, cursor int) *proto.Action {
	return proto.NewAction("input", "id", nodeID, "text", text, "cursor", strconv.Itoa(cursor))
}

// SelectAction moves a select node's value by delta options, wrapping.
// It returns nil when the node has no options.
func SelectAction(n *layout.RNode, delta int) *proto.Action {
	opts := view.Options(n.Props)
	if len(opts) == 0 {
		return nil
	}
	i := slices.Index(opts, n.Props["value"])
	if i < 0 {
		i = 0
		delta = 0
	}
	i = ((i+delta)%len(opts) + len(opts)) % len(opts)
	return proto.NewAction("select", "id", n.ID, "value", opts[i])
}
