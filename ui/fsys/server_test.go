package fsys

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"9fans.net/go/plan9"

	"github.com/elizafairlady/exercises/ui/proto"
)

type mockProvider struct {
	mu    sync.Mutex
	tree  string
	focus string
	acts  []string
	rev   uint64
}

func (m *mockProvider) TreeText() (string, error) { return m.tree, nil }
func (m *mockProvider) ScreenText() (string, error) {
	return "Count: 0\n", nil
}
func (m *mockProvider) HandleAction(a *proto.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acts = append(m.acts, proto.SerializeAction(a))
	m.rev++
}
func (m *mockProvider) Focus() string      { return m.focus }
func (m *mockProvider) SetFocus(id string) { m.focus = id }
func (m *mockProvider) Rev() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rev
}

type client struct {
	t   *testing.T
	nc  net.Conn
	tag uint16
}

func dial(t *testing.T, prov Provider) *client {
	t.Helper()
	cli, srv := net.Pipe()
	go New(prov, nil).Serve(srv)
	t.Cleanup(func() { cli.Close() })
	c := &client{t: t, nc: cli}
	rx := c.rpc(&plan9.Fcall{Type: plan9.Tversion, Tag: plan9.NOTAG, Msize: 8192, Version: "9P2000"})
	if rx.Version != "9P2000" {
		t.Fatalf("version = %q", rx.Version)
	}
	c.rpc(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID, Uname: "glenda"})
	return c
}

func (c *client) rpc(tx *plan9.Fcall) *plan9.Fcall {
	c.t.Helper()
	rx := c.try(tx)
	if rx.Type == plan9.Rerror {
		c.t.Fatalf("%v: %s", tx, rx.Ename)
	}
	return rx
}

func (c *client) try(tx *plan9.Fcall) *plan9.Fcall {
	c.t.Helper()
	if tx.Type != plan9.Tversion {
		c.tag++
		tx.Tag = c.tag
	}
	if err := plan9.WriteFcall(c.nc, tx); err != nil {
		c.t.Fatalf("write: %v", err)
	}
	rx, err := plan9.ReadFcall(c.nc)
	if err != nil {
		c.t.Fatalf("read: %v", err)
	}
	if rx.Tag != tx.Tag {
		c.t.Fatalf("tag = %d, want %d", rx.Tag, tx.Tag)
	}
	return rx
}

func (c *client) open(fid uint32, name string, mode uint8) {
	c.t.Helper()
	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: fid, Wname: []string{name}})
	c.rpc(&plan9.Fcall{Type: plan9.Topen, Fid: fid, Mode: mode})
}

func (c *client) readFile(name string) string {
	c.t.Helper()
	c.open(10, name, plan9.OREAD)
	defer c.rpc(&plan9.Fcall{Type: plan9.Tclunk, Fid: 10})
	var sb strings.Builder
	for {
		rx := c.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 10, Offset: uint64(sb.Len()), Count: 7})
		if len(rx.Data) == 0 {
			return sb.String()
		}
		sb.Write(rx.Data)
	}
}

func (c *client) writeFile(name, data string) *plan9.Fcall {
	c.t.Helper()
	c.open(11, name, plan9.OWRITE)
	defer c.rpc(&plan9.Fcall{Type: plan9.Tclunk, Fid: 11})
	return c.try(&plan9.Fcall{Type: plan9.Twrite, Fid: 11, Data: []byte(data)})
}

func TestReadFiles(t *testing.T) {
	tree := "rev 3\nroot root\nnode root vbox\nprop root pad=1\n"
	prov := &mockProvider{tree: tree, focus: "inc", rev: 3}
	c := dial(t, prov)

	if got := c.readFile("tree"); got != tree {
		t.Errorf("tree = %q", got)
	}
	if got := c.readFile("focus"); got != "inc\n" {
		t.Errorf("focus = %q", got)
	}
	if got := c.readFile("screen"); got != "Count: 0\n" {
		t.Errorf("screen = %q", got)
	}
	if got := c.readFile("rev"); got != "3\n" {
		t.Errorf("rev = %q", got)
	}
}

func TestWriteActions(t *testing.T) {
	prov := &mockProvider{}
	c := dial(t, prov)

	rx := c.writeFile("actions", "click id=inc action=inc\n\nclick id=inc action=inc\n")
	if rx.Type != plan9.Rwrite || rx.Count != 49 {
		t.Fatalf("write = %v", rx)
	}
	if len(prov.acts) != 2 || prov.acts[0] != "click action=inc id=inc" {
		t.Errorf("actions = %q", prov.acts)
	}
	if got := c.readFile("rev"); got != "2\n" {
		t.Errorf("rev = %q", got)
	}

	rx = c.writeFile("actions", "id=x click")
	if rx.Type != plan9.Rerror || !strings.Contains(rx.Ename, "bad action kind") {
		t.Errorf("bad write = %v", rx)
	}
}

func TestWriteActionsAllOrNothing(t *testing.T) {
	prov := &mockProvider{}
	c := dial(t, prov)

	rx := c.writeFile("actions", "click action=inc\nclick action=inc\nid=x click\n")
	if rx.Type != plan9.Rerror {
		t.Fatalf("write = %v, want Rerror", rx)
	}
	if len(prov.acts) != 0 {
		t.Errorf("applied %q before the bad line", prov.acts)
	}
	if got := c.readFile("rev"); got != "0\n" {
		t.Errorf("rev = %q", got)
	}
}

func TestVersionMsize(t *testing.T) {
	cli, srv := net.Pipe()
	go New(&mockProvider{}, nil).Serve(srv)
	defer cli.Close()
	c := &client{t: t, nc: cli}

	rx := c.try(&plan9.Fcall{Type: plan9.Tversion, Tag: plan9.NOTAG, Msize: 16, Version: "9P2000"})
	if rx.Type != plan9.Rerror {
		t.Errorf("msize 16 accepted: %v", rx)
	}
	rx = c.rpc(&plan9.Fcall{Type: plan9.Tversion, Tag: plan9.NOTAG, Msize: 1 << 20, Version: "9P2000"})
	if rx.Msize != 65536 {
		t.Errorf("msize = %d, want 65536", rx.Msize)
	}
	c.rpc(&plan9.Fcall{Type: plan9.Tattach, Fid: 0, Afid: plan9.NOFID, Uname: "glenda"})
	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 1, Wname: []string{"tree"}})
	op := c.rpc(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OREAD})
	if op.Iounit != 65536-plan9.IOHDRSIZE {
		t.Errorf("iounit = %d", op.Iounit)
	}
}

func TestReadDirWholeEntries(t *testing.T) {
	c := dial(t, &mockProvider{})
	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 1})
	c.rpc(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OREAD})

	var names []string
	offset := uint64(0)
	for {
		rx := c.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Offset: offset, Count: 100})
		if len(rx.Data) == 0 {
			break
		}
		for b := rx.Data; len(b) > 0; {
			if len(b) < 2 {
				t.Fatalf("short entry %q", b)
			}
			n := int(b[0]) | int(b[1])<<8
			if len(b) < 2+n {
				t.Fatalf("read split an entry: have %d of %d bytes", len(b), 2+n)
			}
			d, err := plan9.UnmarshalDir(b[:2+n])
			if err != nil {
				t.Fatalf("UnmarshalDir: %v", err)
			}
			names = append(names, d.Name)
			b = b[2+n:]
		}
		offset += uint64(len(rx.Data))
	}
	if got := strings.Join(names, " "); got != "tree actions focus screen rev" {
		t.Errorf("entries = %q", got)
	}

	rx := c.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 10})
	if len(rx.Data) != 0 {
		t.Errorf("count below one entry returned %d bytes", len(rx.Data))
	}
}

func TestWriteFocus(t *testing.T) {
	prov := &mockProvider{}
	c := dial(t, prov)
	c.writeFile("focus", "todo/input\n")
	if prov.focus != "todo/input" {
		t.Errorf("focus = %q", prov.focus)
	}
}

func TestPermissions(t *testing.T) {
	c := dial(t, &mockProvider{})

	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 1, Wname: []string{"tree"}})
	if rx := c.try(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OWRITE}); rx.Type != plan9.Rerror {
		t.Error("opened tree for writing")
	}
	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 2, Wname: []string{"actions"}})
	if rx := c.try(&plan9.Fcall{Type: plan9.Topen, Fid: 2, Mode: plan9.OREAD}); rx.Type != plan9.Rerror {
		t.Error("opened actions for reading")
	}
	if rx := c.try(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 3, Wname: []string{"nope"}}); rx.Type != plan9.Rerror {
		t.Error("walked to a missing file")
	}
	if rx := c.try(&plan9.Fcall{Type: plan9.Tremove, Fid: 1}); rx.Type != plan9.Rerror {
		t.Error("removed a file")
	}
	if rx := c.try(&plan9.Fcall{Type: plan9.Tread, Fid: 99, Count: 10}); rx.Type != plan9.Rerror {
		t.Error("read an unknown fid")
	}
}

func TestReadDir(t *testing.T) {
	c := dial(t, &mockProvider{})
	c.rpc(&plan9.Fcall{Type: plan9.Twalk, Fid: 0, Newfid: 1})
	c.rpc(&plan9.Fcall{Type: plan9.Topen, Fid: 1, Mode: plan9.OREAD})
	rx := c.rpc(&plan9.Fcall{Type: plan9.Tread, Fid: 1, Count: 8192})

	var names []string
	for b := rx.Data; len(b) > 0; {
		n := int(b[0]) | int(b[1])<<8
		d, err := plan9.UnmarshalDir(b[:2+n])
		if err != nil {
			t.Fatalf("UnmarshalDir: %v", err)
		}
		names = append(names, d.Name)
		b = b[2+n:]
	}
	if got := strings.Join(names, " "); got != "tree actions focus screen rev" {
		t.Errorf("entries = %q", got)
	}

	st := c.rpc(&plan9.Fcall{Type: plan9.Tstat, Fid: 0})
	d, err := plan9.UnmarshalDir(st.Stat)
	if err != nil {
		t.Fatal(err)
	}
	if d.Qid.Type&plan9.QTDIR == 0 || d.Mode&plan9.DMDIR == 0 {
		t.Errorf("root stat = %v", d)
	}
}

func TestListen(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&mockProvider{}, nil).serveListener(ctx, ln) }()

	nc, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	tx := &plan9.Fcall{Type: plan9.Tversion, Tag: plan9.NOTAG, Msize: 8192, Version: "9P2000"}
	if err := plan9.WriteFcall(nc, tx); err != nil {
		t.Fatal(err)
	}
	if rx, err := plan9.ReadFcall(nc); err != nil || rx.Type != plan9.Rversion {
		t.Fatalf("version: %v %v", rx, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
