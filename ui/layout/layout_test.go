package layout

import (
	"image"
	"testing"

	"github.com/elizafairlady/exercises/ui/view"
)

func build(t *testing.T, root *view.Node) *RNode {
	t.Helper()
	tree, err := view.Serialize(root, 1)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	rn := Build(tree, DefaultConfig())
	if rn == nil {
		t.Fatal("Build returned nil")
	}
	return rn
}

func TestMeasureLeaves(t *testing.T) {
	root := build(t, view.VBox("root",
		view.TextNode("t", "Hello"),
		view.Button("b", "Add"),
		view.Checkbox("c", "done", false),
		view.TextBox("tb", ""),
		view.Select("s", []string{"Counter", "Todo"}, "Todo"),
		view.TextNode("wide", "日本"),
		view.TextNode("multi", "a\nbcd"),
	))
	tests := []struct {
		id   string
		w, h int
	}{
		{"t", 5, 1},
		{"b", 3 + ButtonDecor, 1},
		{"c", 4 + CheckboxDecor, 1},
		{"tb", 20, 1},
		{"s", 7 + SelectDecor, 1},
		{"wide", 4, 1},
		{"multi", 3, 2},
	}
	for _, tt := range tests {
		n := Find(root, tt.id)
		if n.MinW != tt.w || n.MinH != tt.h {
			t.Errorf("%s: min = %dx%d, want %dx%d", tt.id, n.MinW, n.MinH, tt.w, tt.h)
		}
	}
	if root.MinW != 20 || root.MinH != 8 {
		t.Errorf("root min = %dx%d, want 20x8", root.MinW, root.MinH)
	}
}

func TestPadGapMin(t *testing.T) {
	root := build(t, view.HBox("row",
		view.TextNode("a", "ab"),
		view.TextNode("b", "cd").PropInt("minw", 6),
	).PropInt("pad", 1).PropInt("gap", 2))
	if root.MinW != 2+2+6+2 || root.MinH != 3 {
		t.Errorf("row min = %dx%d, want 12x3", root.MinW, root.MinH)
	}
}

func TestLayoutVertical(t *testing.T) {
	root := build(t, view.VBox("root",
		view.TextNode("a", "Hello"),
		view.TextNode("b", "World"),
	).PropInt("gap", 1))
	bounds := image.Rect(0, 0, 40, 10)
	Layout(root, bounds, DefaultConfig())

	if root.Rect != bounds {
		t.Errorf("root rect = %v", root.Rect)
	}
	a, b := Find(root, "a"), Find(root, "b")
	if a.Rect != image.Rect(0, 0, 40, 1) {
		t.Errorf("a rect = %v", a.Rect)
	}
	if b.Rect != image.Rect(0, 2, 40, 3) {
		t.Errorf("b rect = %v", b.Rect)
	}
}

func TestLayoutFlex(t *testing.T) {
	root := build(t, view.HBox("row",
		view.TextBox("in", "").Prop("flex", "1"),
		view.Button("add", "Add"),
	).PropInt("gap", 1))
	Layout(root, image.Rect(0, 0, 50, 1), DefaultConfig())

	in, add := Find(root, "in"), Find(root, "add")
	if in.Rect.Dx() != 50-1-7 {
		t.Errorf("input width = %d, want 42", in.Rect.Dx())
	}
	if add.Rect.Min.X != in.Rect.Max.X+1 || add.Rect.Dx() != 7 {
		t.Errorf("add rect = %v", add.Rect)
	}
}

func TestLayoutMaxW(t *testing.T) {
	root := build(t, view.VBox("root",
		view.TextNode("a", "x").PropInt("maxw", 10),
	))
	Layout(root, image.Rect(0, 0, 80, 5), DefaultConfig())
	if got := Find(root, "a").Rect.Dx(); got != 10 {
		t.Errorf("width = %d, want 10", got)
	}
}

func TestHitTestAndFocus(t *testing.T) {
	root := build(t, view.VBox("root",
		view.TextNode("title", "Counter"),
		view.HBox("row",
			view.Button("dec", "-"),
			view.Button("inc", "+"),
		),
		view.Button("reset", "Reset").Prop("enabled", "0"),
	))
	Layout(root, image.Rect(0, 0, 30, 5), DefaultConfig())

	if hit := HitTest(root, image.Pt(1, 1)); hit == nil || hit.ID != "dec" {
		t.Errorf("hit at (1,1) = %v", hit)
	}
	if hit := HitTest(root, image.Pt(6, 1)); hit == nil || hit.ID != "inc" {
		t.Errorf("hit at (6,1) = %v", hit)
	}
	if hit := HitTest(root, image.Pt(0, 0)); hit != nil {
		t.Errorf("hit on label = %s", hit.ID)
	}
	if hit := HitTest(root, image.Pt(100, 100)); hit != nil {
		t.Errorf("hit outside = %s", hit.ID)
	}

	tests := []struct {
		cur, next, prev string
	}{
		{"", "dec", "inc"},
		{"dec", "inc", "inc"},
		{"inc", "dec", "dec"},
		{"gone", "dec", "inc"},
	}
	for _, tt := range tests {
		if got := NextFocusable(root, tt.cur); got != tt.next {
			t.Errorf("NextFocusable(%q) = %q, want %q", tt.cur, got, tt.next)
		}
		if got := PrevFocusable(root, tt.cur); got != tt.prev {
			t.Errorf("PrevFocusable(%q) = %q, want %q", tt.cur, got, tt.prev)
		}
	}
}

func TestBuildNil(t *testing.T) {
	if Build(nil, DefaultConfig()) != nil {
		t.Error("Build(nil) != nil")
	}
	if NextFocusable(nil, "") != "" {
		t.Error("NextFocusable(nil) != \"\"")
	}
}
