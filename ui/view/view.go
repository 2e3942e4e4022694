// Package view provides the Go API for building declarative widget
// trees and the interfaces that connect an application to a host.
//
// An application is a Model: Update applies one message, View builds
// a node tree from the current state. Hosts only see the untyped App
// interface; Bind adapts a Model to it given a decoder from host
// actions to the model's message type.
package view

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/elizafairlady/exercises/ui/proto"
)

// ErrDuplicateID is returned by Serialize when two nodes share an ID.
var ErrDuplicateID = errors.New("view: duplicate node id")

// Node is a widget tree node with an ID, type, props, and children.
type Node struct {
	ID       string
	Type     string
	Props    map[string]string
	Children []*Node
}

// Action is a semantic UI action sent from a host.
type Action = proto.Action

// App is what a host drives: View to get the current tree, Handle to
// deliver one action. Handle must process the action to completion.
type App interface {
	View() *Node
	Handle(a *Action)
}

// Model is an application with a typed message set.
type Model[M any] interface {
	Update(msg M)
	View() *Node
}

// Decoder maps a host action to a model message. It reports false for
// actions the model has no message for.
type Decoder[M any] func(a *Action) (M, bool)

type bound[M any] struct {
	model  Model[M]
	decode Decoder[M]
}

// Bind adapts a Model to the App interface. Actions the decoder
// rejects are dropped.
func Bind[M any](m Model[M], decode Decoder[M]) App {
	return &bound[M]{model: m, decode: decode}
}

func (b *bound[M]) View() *Node { return b.model.View() }

func (b *bound[M]) Handle(a *Action) {
	if msg, ok := b.decode(a); ok {
		b.model.Update(msg)
	}
}

// --- Node builder helpers ---

// N creates a new node with the given id and type.
func N(id, typ string) *Node {
	return &Node{
		ID:    id,
		Type:  typ,
		Props: make(map[string]string),
	}
}

// Prop sets a property on the node and returns it for chaining.
func (n *Node) Prop(k, v string) *Node {
	n.Props[k] = v
	return n
}

// PropInt sets an integer property.
func (n *Node) PropInt(k string, v int) *Node {
	n.Props[k] = strconv.Itoa(v)
	return n
}

// Text sets the "text" property.
func (n *Node) Text(s string) *Node {
	return n.Prop("text", s)
}

// On sets the semantic action a host reports when the node is
// activated.
func (n *Node) On(action string) *Node {
	return n.Prop("on", action)
}

// Arg sets the argument reported alongside the node's action.
func (n *Node) Arg(v int) *Node {
	return n.PropInt("arg", v)
}

// Child appends child nodes and returns the parent for chaining.
func (n *Node) Child(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first node in the subtree with the given ID.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// VBox creates a vertical box.
func VBox(id string, children ...*Node) *Node {
	return N(id, "vbox").Child(children...)
}

// HBox creates a horizontal box.
func HBox(id string, children ...*Node) *Node {
	return N(id, "hbox").Child(children...)
}

// Spacer creates a flexible spacer.
func Spacer(id string) *Node {
	return N(id, "spacer").Prop("flex", "1")
}

// TextNode creates a text label.
func TextNode(id, text string) *Node {
	return N(id, "text").Text(text)
}

// Button creates a button.
func Button(id, text string) *Node {
	return N(id, "button").Text(text).Prop("focusable", "1")
}

// Checkbox creates a checkbox.
func Checkbox(id, text string, checked bool) *Node {
	v := "0"
	if checked {
		v = "1"
	}
	return N(id, "checkbox").Text(text).Prop("checked", v).Prop("focusable", "1")
}

// TextBox creates a single-line text input showing text.
func TextBox(id, text string) *Node {
	return N(id, "textbox").Text(text).Prop("focusable", "1")
}

// Rect creates a filled rectangle, usually a separator.
func Rect(id string) *Node {
	return N(id, "rect")
}

// Row creates a semantic row container for list entries.
func Row(id string, children ...*Node) *Node {
	return N(id, "row").Child(children...)
}

// Select creates a pick list offering options with selected shown.
// Hosts report a choice as a "select" action with value=<option>.
func Select(id string, options []string, selected string) *Node {
	return N(id, "select").
		Prop("options", strings.Join(options, "|")).
		Prop("value", selected).
		Prop("focusable", "1")
}

// Options returns the options of a select node's props.
func Options(props map[string]string) []string {
	if props["options"] == "" {
		return nil
	}
	return strings.Split(props["options"], "|")
}

// --- Scoping ---

// Mount places a sub-application's tree under scope: every node ID and
// every "on" prop in the subtree gets the prefix "scope/". A host then
// reports actions with scoped IDs, which Unmount reverses.
func Mount(scope string, n *Node) *Node {
	if n == nil {
		return nil
	}
	n.ID = scope + "/" + n.ID
	if on, ok := n.Props["on"]; ok {
		n.Props["on"] = scope + "/" + on
	}
	for _, c := range n.Children {
		Mount(scope, c)
	}
	return n
}

// Unmount returns a copy of a with the scope prefix removed from its
// "id" and "action" values. It reports false when a's target is not
// inside scope.
func Unmount(scope string, a *Action) (*Action, bool) {
	prefix := scope + "/"
	id, ok := strings.CutPrefix(a.Get("id"), prefix)
	if !ok {
		return nil, false
	}
	out := a.Clone()
	out.KVs["id"] = id
	if act, ok := out.KVs["action"]; ok {
		out.KVs["action"] = strings.TrimPrefix(act, prefix)
	}
	return out, true
}

// --- Serialization ---

// Serialize converts the node tree to a proto.Tree.
func Serialize(root *Node, rev uint64) (*proto.Tree, error) {
	t := &proto.Tree{
		Rev:   rev,
		Root:  root.ID,
		Nodes: make(map[string]*proto.Node),
	}
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if _, dup := t.Nodes[n.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
		}
		pn := &proto.Node{
			ID:    n.ID,
			Type:  n.Type,
			Props: maps.Clone(n.Props),
		}
		if pn.Props == nil {
			pn.Props = make(map[string]string)
		}
		for _, c := range n.Children {
			pn.Children = append(pn.Children, c.ID)
		}
		t.Nodes[n.ID] = pn
		t.Order = append(t.Order, n.ID)
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return t, nil
}
