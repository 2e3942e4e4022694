// Package uifs implements the session that sits between an App and
// its hosts.
//
// The session is the model/controller boundary:
//   - the tree is computed from the app via App.View and cached per
//     revision
//   - actions are delivered via App.Handle, one at a time
//   - focus is kept here so every host sees the same value
//
// A session may be driven in-process (terminal host, scripts) and over
// 9P at the same time; its lock serializes all of them.
package uifs

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/elizafairlady/exercises/ui/proto"
	"github.com/elizafairlady/exercises/ui/view"
)

// UIFS is a running app session.
type UIFS struct {
	mu    sync.Mutex
	app   view.App
	rev   uint64
	tree  *proto.Tree // nil when stale
	err   error       // error of the last recompute
	focus string
	log   *slog.Logger
	hook  func() // see SetNotify
}

// New creates a session for app. A nil logger discards.
func New(app view.App, log *slog.Logger) *UIFS {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &UIFS{app: app, log: log.With("component", "uifs")}
}

// Rev returns the current revision. It grows on every action and
// invalidation.
func (u *UIFS) Rev() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rev
}

// Tree returns the current tree snapshot, recomputing it if stale.
func (u *UIFS) Tree() (*proto.Tree, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.recompute()
	return u.tree, u.err
}

// TreeText returns the serialized tree.
func (u *UIFS) TreeText() (string, error) {
	t, err := u.Tree()
	if err != nil {
		return "", err
	}
	return proto.SerializeTree(t), nil
}

// recompute rebuilds the cached tree. Must be called with mu held.
func (u *UIFS) recompute() {
	if u.tree != nil || u.err != nil {
		return
	}
	root := u.app.View()
	if root == nil {
		u.err = fmt.Errorf("uifs: app returned no view")
		return
	}
	u.tree, u.err = view.Serialize(root, u.rev)
	if u.err != nil {
		u.log.Error("view rejected", "rev", u.rev, "err", u.err)
	}
}

// invalidate drops the cached tree. Must be called with mu held.
func (u *UIFS) invalidate() {
	u.rev++
	u.tree = nil
	u.err = nil
}

// SetNotify installs fn to be called, without the lock held, after
// every state change. Hosts use it to repaint. A nil fn removes it.
func (u *UIFS) SetNotify(fn func()) {
	u.mu.Lock()
	u.hook = fn
	u.mu.Unlock()
}

func (u *UIFS) notify() {
	u.mu.Lock()
	fn := u.hook
	u.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Invalidate forces the next Tree call to ask the app again.
func (u *UIFS) Invalidate() {
	u.mu.Lock()
	u.invalidate()
	u.mu.Unlock()
	u.notify()
}

// HandleAction delivers a to the app and invalidates the tree.
// "focus" actions only move the focus.
func (u *UIFS) HandleAction(a *proto.Action) {
	u.mu.Lock()
	u.log.Debug("action", "rev", u.rev, "action", proto.SerializeAction(a))
	if a.Kind == "focus" {
		u.focus = a.Get("id")
	} else {
		u.app.Handle(a)
	}
	u.invalidate()
	u.mu.Unlock()
	u.notify()
}

// ProcessAction parses one action line and handles it.
func (u *UIFS) ProcessAction(line string) error {
	a, err := proto.ParseAction(line)
	if err != nil {
		return err
	}
	u.HandleAction(a)
	return nil
}

// Focus returns the focused node ID.
func (u *UIFS) Focus() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.focus
}

// SetFocus moves the focus to id.
func (u *UIFS) SetFocus(id string) {
	u.mu.Lock()
	changed := u.focus != id
	u.focus = id
	u.mu.Unlock()
	if changed {
		u.notify()
	}
}
