// Package counter is the counter exercise: one integer that can be
// incremented, decremented, and reset.
package counter

import (
	"strconv"

	"github.com/elizafairlady/exercises/ui/view"
)

// Msg is a counter operation.
type Msg int

const (
	Increment Msg = iota
	Decrement
	Reset
)

func (m Msg) String() string {
	switch m {
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case Reset:
		return "Reset"
	}
	return "Msg(" + strconv.Itoa(int(m)) + ")"
}

// Counter holds the counter's value. The zero value is ready to use.
type Counter struct {
	Value int
}

// New returns a counter at 0.
func New() *Counter {
	return &Counter{}
}

// Update applies msg. Unknown messages are ignored.
func (c *Counter) Update(msg Msg) {
	switch msg {
	case Increment:
		c.Value++
	case Decrement:
		c.Value--
	case Reset:
		c.Value = 0
	}
}

// View builds the counter's widget tree.
func (c *Counter) View() *view.Node {
	return view.VBox("root",
		view.HBox("row",
			view.Button("dec", "-").On("dec").PropInt("minw", 5),
			view.TextNode("count", "Count: "+strconv.Itoa(c.Value)).PropInt("pad", 1),
			view.Button("inc", "+").On("inc").PropInt("minw", 5),
		).PropInt("gap", 2),
		view.Button("reset", "Reset").On("reset").Prop("flex", "0"),
	).PropInt("gap", 1)
}

// Decode maps a host action to a counter message.
func Decode(a *view.Action) (Msg, bool) {
	if a.Kind != "click" {
		return 0, false
	}
	switch a.Get("action") {
	case "inc":
		return Increment, true
	case "dec":
		return Decrement, true
	case "reset":
		return Reset, true
	}
	return 0, false
}
