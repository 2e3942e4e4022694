// Package switcher hosts the exercises one at a time. It owns exactly
// one active exercise, routes wrapped messages to it, and replaces it
// with a fresh instance whenever a choice is selected.
package switcher

import (
	"fmt"
	"strings"

	"github.com/elizafairlady/exercises/exercise/counter"
	"github.com/elizafairlady/exercises/exercise/todo"
	"github.com/elizafairlady/exercises/ui/view"
)

const (
	// DefaultTitle is the window title used when none is configured.
	DefaultTitle = "Multi-Exercise App"
	// DefaultHeader is the heading shown above the selector.
	DefaultHeader = "ICED APP RS"
)

// Choice names an exercise.
type Choice int

const (
	Counter Choice = iota
	Todo
)

// Choices returns every choice in display order.
func Choices() []Choice {
	return []Choice{Counter, Todo}
}

func (c Choice) String() string {
	switch c {
	case Counter:
		return "Counter"
	case Todo:
		return "Todo"
	}
	return fmt.Sprintf("Choice(%d)", int(c))
}

// scope is the ID prefix the choice's tree is mounted under.
func (c Choice) scope() string {
	return strings.ToLower(c.String())
}

// ParseChoice parses a choice name, ignoring case.
func ParseChoice(s string) (Choice, error) {
	for _, c := range Choices() {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("switcher: unknown exercise %q", s)
}

// Msg is a switcher message: Select, CounterMsg or TodoMsg.
type Msg interface {
	isMsg()
}

// Select replaces the active exercise with a fresh Choice.
type Select struct{ Choice Choice }

// CounterMsg carries a message for the counter exercise.
type CounterMsg struct{ Msg counter.Msg }

// TodoMsg carries a message for the todo exercise.
type TodoMsg struct{ Msg todo.Msg }

func (Select) isMsg()     {}
func (CounterMsg) isMsg() {}
func (TodoMsg) isMsg()    {}

// exercise is the active sub-state: *counter.Counter or *todo.List.
type exercise interface {
	View() *view.Node
}

// Switcher is the exercise switcher state.
type Switcher struct {
	Header string

	choice Choice
	active exercise
}

// New returns a switcher showing a fresh counter.
func New() *Switcher {
	return NewWith(Counter)
}

// NewWith returns a switcher showing a fresh instance of c.
func NewWith(c Choice) *Switcher {
	s := &Switcher{Header: DefaultHeader}
	s.Update(Select{Choice: c})
	return s
}

func fresh(c Choice) exercise {
	if c == Todo {
		return todo.New()
	}
	return counter.New()
}

// Choice returns the selected exercise.
func (s *Switcher) Choice() Choice {
	return s.choice
}

// Counter returns the active counter, or nil when another exercise is
// active.
func (s *Switcher) Counter() *counter.Counter {
	c, _ := s.active.(*counter.Counter)
	return c
}

// Todo returns the active todo list, or nil when another exercise is
// active.
func (s *Switcher) Todo() *todo.List {
	t, _ := s.active.(*todo.List)
	return t
}

// Update applies msg. Messages addressed to an inactive exercise are
// dropped.
func (s *Switcher) Update(msg Msg) {
	switch m := msg.(type) {
	case Select:
		if m.Choice != Todo {
			m.Choice = Counter
		}
		s.choice = m.Choice
		s.active = fresh(m.Choice)
	case CounterMsg:
		if c := s.Counter(); c != nil {
			c.Update(m.Msg)
		}
	case TodoMsg:
		if t := s.Todo(); t != nil {
			t.Update(m.Msg)
		}
	}
}

// View builds the header and selector and mounts the active exercise
// below them.
func (s *Switcher) View() *view.Node {
	names := make([]string, 0, 2)
	for _, c := range Choices() {
		names = append(names, c.String())
	}
	return view.VBox("root",
		view.VBox("header",
			view.TextNode("title", s.Header).Prop("bold", "1").Prop("align", "center"),
			view.TextNode("subtitle", "Select your app from the dropdown below").Prop("align", "center"),
		),
		view.Select("app", names, s.choice.String()).PropInt("minw", 20),
		view.Rect("sep").Prop("bg", "border").PropInt("minh", 1).PropInt("maxh", 1),
		view.Mount(s.choice.scope(), s.active.View()),
		view.Spacer("sp"),
	).PropInt("pad", 1).PropInt("gap", 1)
}

// Decode maps a host action to a switcher message, unwrapping actions
// from the mounted exercise trees.
func Decode(a *view.Action) (Msg, bool) {
	if a.Kind == "select" && a.Get("id") == "app" {
		c, err := ParseChoice(a.Get("value"))
		if err != nil {
			return nil, false
		}
		return Select{Choice: c}, true
	}
	if inner, ok := view.Unmount(Counter.scope(), a); ok {
		if m, ok := counter.Decode(inner); ok {
			return CounterMsg{Msg: m}, true
		}
		return nil, false
	}
	if inner, ok := view.Unmount(Todo.scope(), a); ok {
		if m, ok := todo.Decode(inner); ok {
			return TodoMsg{Msg: m}, true
		}
	}
	return nil, false
}

// App returns s bound to Decode, ready for a host.
func (s *Switcher) App() view.App {
	return view.Bind[Msg](s, Decode)
}
