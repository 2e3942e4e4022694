package plain

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/elizafairlady/exercises/exercise/counter"
	"github.com/elizafairlady/exercises/exercise/switcher"
	"github.com/elizafairlady/exercises/exercise/todo"
	"github.com/elizafairlady/exercises/ui/view"
)

func render(t *testing.T, root *view.Node, focus string) string {
	t.Helper()
	tree, err := view.Serialize(root, 1)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	r := New(&bytes.Buffer{}, nil)
	r.SetProfile(termenv.Ascii)
	return r.Render(tree, focus)
}

func TestRenderCounter(t *testing.T) {
	c := counter.New()
	c.Update(counter.Increment)
	got := render(t, c.View(), "")
	want := "[ - ]   Count: 1    [ + ]\n\n[ Reset ]\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTodo(t *testing.T) {
	l := todo.New()
	got := render(t, l.View(), "")
	for _, s := range []string{"Todo App", "[Enter a todo...     ] [ Add ]", "No items yet.", "no items"} {
		if !strings.Contains(got, s) {
			t.Errorf("empty list: missing %q in\n%s", s, got)
		}
	}

	l.Update(todo.UpdateInput{Text: "milk"})
	l.Update(todo.Add{})
	l.Update(todo.UpdateInput{Text: "eggs"})
	l.Update(todo.Add{})
	l.Update(todo.ToggleComplete{Index: 1})
	got = render(t, l.View(), "")
	for _, s := range []string{"[ ] milk [ Done ] [ Remove ]", "[x] eggs [ Undo ] [ Remove ]", "1/2 done"} {
		if !strings.Contains(got, s) {
			t.Errorf("missing %q in\n%s", s, got)
		}
	}
}

func TestRenderSwitcher(t *testing.T) {
	s := switcher.New()
	got := render(t, s.View(), "app")
	lines := strings.Split(got, "\n")
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimSpace(l)
	}
	for _, want := range []string{
		"ICED APP RS",
		"Select your app from the dropdown below",
		"< Counter >  (Counter | Todo)",
		strings.Repeat("─", 40),
	} {
		found := false
		for _, l := range trimmed {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("no line %q in\n%s", want, got)
		}
	}
	if !strings.Contains(got, "Count: 0") {
		t.Errorf("counter not mounted:\n%s", got)
	}
}

func TestRenderTrailing(t *testing.T) {
	got := render(t, view.VBox("root", view.TextNode("a", "x"), view.TextNode("b", "long line")), "")
	if got != "x\nlong line\n" {
		t.Errorf("got %q", got)
	}
	r := New(&bytes.Buffer{}, nil)
	if r.Render(nil, "") != "" {
		t.Error("nil tree rendered")
	}
}
