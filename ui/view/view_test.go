package view

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elizafairlady/exercises/ui/proto"
)

func TestNodeBuilders(t *testing.T) {
	root := VBox("root",
		TextNode("title", "Hello"),
		HBox("bar",
			Button("ok", "OK").On("submit").Arg(2),
			Button("cancel", "Cancel"),
		),
		TextBox("input", "draft"),
		Checkbox("done", "Done", true),
		Select("app", []string{"Counter", "Todo"}, "Todo"),
	)

	if root.Type != "vbox" {
		t.Errorf("root type = %q", root.Type)
	}
	if len(root.Children) != 5 {
		t.Fatalf("root children = %d, want 5", len(root.Children))
	}
	ok := root.Find("ok")
	if ok.Props["on"] != "submit" || ok.Props["arg"] != "2" {
		t.Errorf("ok props = %v", ok.Props)
	}
	if tb := root.Find("input"); tb.Props["text"] != "draft" || tb.Props["focusable"] != "1" {
		t.Errorf("textbox props = %v", tb.Props)
	}
	if cb := root.Find("done"); cb.Props["checked"] != "1" {
		t.Errorf("checkbox checked = %q", cb.Props["checked"])
	}
	sel := root.Find("app")
	if diff := cmp.Diff([]string{"Counter", "Todo"}, Options(sel.Props)); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}
	if sel.Props["value"] != "Todo" {
		t.Errorf("select value = %q", sel.Props["value"])
	}
	if root.Find("missing") != nil {
		t.Error("Find(missing) != nil")
	}
	if Options(map[string]string{}) != nil {
		t.Error("Options of empty props != nil")
	}
}

func TestMountUnmount(t *testing.T) {
	tree := Mount("todo", VBox("root",
		Button("add", "Add").On("add"),
		TextNode("title", "Todo App"),
	))
	if tree.ID != "todo/root" {
		t.Errorf("root id = %q", tree.ID)
	}
	add := tree.Find("todo/add")
	if add == nil || add.Props["on"] != "todo/add" {
		t.Fatalf("mounted add = %+v", add)
	}
	if _, ok := tree.Find("todo/title").Props["on"]; ok {
		t.Error("mount added an on prop to a label")
	}

	a := proto.NewAction("click", "id", "todo/add", "action", "todo/add")
	inner, ok := Unmount("todo", a)
	if !ok {
		t.Fatal("Unmount rejected an action in scope")
	}
	if inner.Get("id") != "add" || inner.Get("action") != "add" {
		t.Errorf("unmounted = %v", inner.KVs)
	}
	if a.Get("id") != "todo/add" {
		t.Error("Unmount modified its argument")
	}
	if _, ok := Unmount("counter", a); ok {
		t.Error("Unmount accepted an action from another scope")
	}
	if _, ok := Unmount("todo", proto.NewAction("select", "id", "app")); ok {
		t.Error("Unmount accepted an unscoped action")
	}
}

func TestSerialize(t *testing.T) {
	root := VBox("root",
		TextNode("t1", "Hello"),
		HBox("row", Button("b1", "OK")),
	)
	tree, err := Serialize(root, 7)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if tree.Rev != 7 || tree.Root != "root" {
		t.Errorf("rev=%d root=%q", tree.Rev, tree.Root)
	}
	if diff := cmp.Diff([]string{"root", "t1", "row", "b1"}, tree.Order); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"t1", "row"}, tree.Nodes["root"].Children); diff != "" {
		t.Errorf("root children (-want +got):\n%s", diff)
	}

	// Serialized props must not alias the node's map.
	root.Find("t1").Prop("text", "changed")
	if tree.Nodes["t1"].Props["text"] != "Hello" {
		t.Error("serialized props alias the view tree")
	}

	parsed, err := proto.ParseTree(proto.SerializeTree(tree))
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	if diff := cmp.Diff(tree, parsed); diff != "" {
		t.Errorf("proto roundtrip (-want +got):\n%s", diff)
	}
}

func TestSerializeDuplicateID(t *testing.T) {
	root := VBox("root", TextNode("x", "a"), TextNode("x", "b"))
	if _, err := Serialize(root, 1); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

type tally struct{ n int }

func (c *tally) Update(d int) { c.n += d }
func (c *tally) View() *Node  { return TextNode("n", "") }

func TestBind(t *testing.T) {
	m := &tally{}
	app := Bind[int](m, func(a *Action) (int, bool) {
		switch a.Get("action") {
		case "up":
			return 1, true
		case "down":
			return -1, true
		}
		return 0, false
	})
	app.Handle(proto.NewAction("click", "action", "up"))
	app.Handle(proto.NewAction("click", "action", "up"))
	app.Handle(proto.NewAction("click", "action", "sideways"))
	app.Handle(proto.NewAction("click", "action", "down"))
	if m.n != 1 {
		t.Errorf("n = %d, want 1", m.n)
	}
	if app.View().ID != "n" {
		t.Error("View not forwarded")
	}
}
