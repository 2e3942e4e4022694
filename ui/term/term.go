// Package term hosts a session on a terminal with tcell.
//
// The host owns the screen and turns terminal input into actions:
//   - mouse clicks activate the widget under the pointer
//   - Tab and Backtab move the focus
//   - Enter or Space activates a focused button or checkbox
//   - typing edits a focused textbox with emacs-style motion keys;
//     Enter there sends key=Enter
//   - Left and Right cycle a focused select; Enter and Space advance it
//   - Esc, Ctrl+C and Ctrl+Q quit
package term

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/elizafairlady/exercises/ui/layout"
	"github.com/elizafairlady/exercises/ui/proto"
	"github.com/elizafairlady/exercises/ui/text"
	"github.com/elizafairlady/exercises/ui/theme"
	"github.com/elizafairlady/exercises/ui/uifs"
)

// Host draws a session and feeds it input.
type Host struct {
	screen tcell.Screen
	sess   *uifs.UIFS
	theme  *theme.Theme
	conf   *layout.Config
	log    *slog.Logger

	root    *layout.RNode // last laid-out tree
	pressed bool          // button 1 is down

	edit   text.Line // editor of the focused textbox
	editID string
}

// New creates a host. A nil theme means theme.Default; a nil logger
// discards.
func New(screen tcell.Screen, sess *uifs.UIFS, th *theme.Theme, log *slog.Logger) *Host {
	if th == nil {
		th = theme.Default()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Host{
		screen: screen,
		sess:   sess,
		theme:  th,
		conf:   layout.DefaultConfig(),
		log:    log.With("component", "term"),
	}
}

// Run initializes the screen and processes events until the user quits
// or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	defer h.screen.Fini()
	h.screen.EnableMouse()

	h.sess.SetNotify(func() { h.screen.PostEvent(tcell.NewEventInterrupt(nil)) })
	defer h.sess.SetNotify(nil)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			h.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-done:
		}
	}()

	h.Draw()
	for {
		ev := h.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		if h.HandleEvent(ev) {
			h.log.Info("quit")
			return nil
		}
	}
}

// HandleEvent applies one terminal event and redraws. It reports
// whether the user asked to quit.
func (h *Host) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
	case *tcell.EventKey:
		if quit = h.key(ev); quit {
			return true
		}
	case *tcell.EventMouse:
		h.mouse(ev)
	}
	h.Draw()
	return false
}

// Draw lays out the current tree to the screen size and paints it.
func (h *Host) Draw() {
	h.screen.HideCursor()
	tree, err := h.sess.Tree()
	if err != nil {
		h.log.Error("tree", "err", err)
		h.screen.Clear()
		p := &painter{s: h.screen, th: h.theme}
		w, _ := h.screen.Size()
		p.text(0, 0, image.Rect(0, 0, w, 1), err.Error(), p.base())
		h.screen.Show()
		return
	}
	root := layout.Build(tree, h.conf)
	if root == nil {
		return
	}
	w, ht := h.screen.Size()
	layout.Layout(root, image.Rect(0, 0, w, ht), h.conf)
	h.root = root

	p := &painter{s: h.screen, th: h.theme, focus: h.sess.Focus(), edit: &h.edit, editID: h.editID}
	p.paint(root)
	h.screen.Show()
}

func (h *Host) send(a *proto.Action) {
	if a != nil {
		h.sess.HandleAction(a)
	}
}

func (h *Host) key(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return true
	case tcell.KeyTab:
		h.sess.SetFocus(layout.NextFocusable(h.root, h.sess.Focus()))
		return false
	case tcell.KeyBacktab:
		h.sess.SetFocus(layout.PrevFocusable(h.root, h.sess.Focus()))
		return false
	}

	n := layout.Find(h.root, h.sess.Focus())
	if n == nil {
		return false
	}
	activate := ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyRune && ev.Rune() == ' '

	switch n.Type {
	case "button", "checkbox":
		if activate {
			h.send(ClickAction(n, 1, n.Rect.Min))
		}
	case "select":
		switch {
		case ev.Key() == tcell.KeyLeft:
			h.send(SelectAction(n, -1))
		case ev.Key() == tcell.KeyRight, activate:
			h.send(SelectAction(n, 1))
		}
	case "textbox":
		h.editKey(n, ev)
	}
	return false
}

// editKey applies ev to the textbox editor and reports a change as an
// input action. The editor follows the tree when the app rewrites the
// text, e.g. clearing it after an add.
func (h *Host) editKey(n *layout.RNode, ev *tcell.EventKey) {
	if h.editID != n.ID || h.edit.String() != n.Props["text"] {
		h.edit.Set(n.Props["text"])
		h.editID = n.ID
	}
	seq := h.edit.Seq()
	switch ev.Key() {
	case tcell.KeyRune:
		h.edit.Insert(ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		h.edit.Backspace()
	case tcell.KeyDelete, tcell.KeyCtrlD:
		h.edit.DeleteForward()
	case tcell.KeyCtrlK:
		h.edit.KillLine()
	case tcell.KeyLeft, tcell.KeyCtrlB:
		h.edit.Move(-1)
	case tcell.KeyRight, tcell.KeyCtrlF:
		h.edit.Move(1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		h.edit.Home()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		h.edit.End()
	case tcell.KeyEnter:
		h.send(KeyAction(n.ID, "Enter", 0))
	}
	if h.edit.Seq() != seq {
		h.send(InputAction(n.ID, h.edit.String(), h.edit.Cursor()))
	}
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	down := ev.Buttons()&tcell.Button1 != 0
	wasDown := h.pressed
	h.pressed = down
	if !down || wasDown {
		return
	}
	x, y := ev.Position()
	pt := image.Pt(x, y)
	hit := layout.HitTest(h.root, pt)
	if hit == nil {
		return
	}
	h.sess.SetFocus(hit.ID)
	switch hit.Type {
	case "button", "checkbox":
		h.send(ClickAction(hit, 1, pt))
	case "select":
		h.send(SelectAction(hit, 1))
	}
}
