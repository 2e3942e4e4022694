// Package todo is the todo-list exercise: an ordered list of items
// with a pending input line.
//
// Items are addressed by their current index. Index-based messages
// built from an older tree may be stale; Update ignores any index out
// of range instead of failing.
package todo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/elizafairlady/exercises/ui/view"
)

// Item is one entry of the list.
type Item struct {
	Text      string
	Completed bool
}

// List is the todo state.
type List struct {
	Items []Item
	Input string
}

// Msg is a todo operation. The concrete types are UpdateInput, Add,
// Remove, ToggleComplete and ClearCompleted.
type Msg interface {
	isMsg()
}

// UpdateInput replaces the pending input.
type UpdateInput struct{ Text string }

// Add appends the trimmed input as a new item and clears the input.
type Add struct{}

// Remove deletes the item at Index.
type Remove struct{ Index int }

// ToggleComplete flips the completion flag of the item at Index.
type ToggleComplete struct{ Index int }

// ClearCompleted removes all completed items.
type ClearCompleted struct{}

func (UpdateInput) isMsg()    {}
func (Add) isMsg()            {}
func (Remove) isMsg()         {}
func (ToggleComplete) isMsg() {}
func (ClearCompleted) isMsg() {}

// New returns an empty list.
func New() *List {
	return &List{}
}

func (l *List) valid(i int) bool {
	return i >= 0 && i < len(l.Items)
}

// Update applies msg.
func (l *List) Update(msg Msg) {
	switch m := msg.(type) {
	case UpdateInput:
		l.Input = m.Text
	case Add:
		text := strings.TrimSpace(l.Input)
		if text == "" {
			return
		}
		l.Items = append(l.Items, Item{Text: text})
		l.Input = ""
	case Remove:
		if l.valid(m.Index) {
			l.Items = slices.Delete(l.Items, m.Index, m.Index+1)
		}
	case ToggleComplete:
		if l.valid(m.Index) {
			l.Items[m.Index].Completed = !l.Items[m.Index].Completed
		}
	case ClearCompleted:
		l.Items = slices.DeleteFunc(l.Items, func(it Item) bool { return it.Completed })
	}
}

// Done returns the number of completed items.
func (l *List) Done() int {
	n := 0
	for _, it := range l.Items {
		if it.Completed {
			n++
		}
	}
	return n
}

// View builds the todo widget tree.
func (l *List) View() *view.Node {
	var rows []*view.Node
	for i, it := range l.Items {
		id := "item/" + strconv.Itoa(i)
		mark, toggle := "[ ] ", "Done"
		if it.Completed {
			mark, toggle = "[x] ", "Undo"
		}
		rows = append(rows, view.Row(id,
			view.TextNode(id+"/text", mark+it.Text).Prop("flex", "1"),
			view.Button(id+"/toggle", toggle).On("toggle").Arg(i),
			view.Button(id+"/remove", "Remove").On("remove").Arg(i),
		).PropInt("gap", 1))
	}
	if len(rows) == 0 {
		rows = append(rows,
			view.TextNode("empty", "No items yet. Type above and press Add.").Prop("fg", "dim"))
	}

	status := "no items"
	if len(l.Items) > 0 {
		status = strconv.Itoa(l.Done()) + "/" + strconv.Itoa(len(l.Items)) + " done"
	}

	return view.VBox("root",
		view.TextNode("title", "Todo App").Prop("bold", "1"),
		view.HBox("input-row",
			view.TextBox("input", l.Input).
				Prop("placeholder", "Enter a todo...").
				Prop("flex", "1"),
			view.Button("add", "Add").On("add"),
		).PropInt("gap", 1),
		view.VBox("list", rows...),
		view.HBox("footer",
			view.TextNode("status", status).Prop("fg", "dim").Prop("flex", "1"),
			view.Button("clear", "Clear").On("clear"),
		).PropInt("gap", 1),
	).PropInt("gap", 1).PropInt("maxw", 60)
}

// Decode maps a host action to a todo message.
func Decode(a *view.Action) (Msg, bool) {
	switch a.Kind {
	case "input":
		if a.Get("id") != "input" {
			return nil, false
		}
		return UpdateInput{Text: a.Get("text")}, true
	case "key":
		if a.Get("id") == "input" && a.Get("key") == "Enter" {
			return Add{}, true
		}
	case "click":
		switch a.Get("action") {
		case "add":
			return Add{}, true
		case "clear":
			return ClearCompleted{}, true
		case "toggle":
			if i, err := strconv.Atoi(a.Get("arg")); err == nil {
				return ToggleComplete{Index: i}, true
			}
		case "remove":
			if i, err := strconv.Atoi(a.Get("arg")); err == nil {
				return Remove{Index: i}, true
			}
		}
	}
	return nil, false
}
