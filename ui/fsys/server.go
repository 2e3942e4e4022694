// Package fsys serves a running session as a 9P2000 file tree, so any
// 9P client can inspect and drive the app.
//
// Namespace:
//
//	/          directory (root)
//	/tree      read: serialized view tree
//	/actions   write: one action per line; a write with a bad line
//	           applies none of them
//	/focus     read/write: focused node ID
//	/screen    read: plain-text rendering
//	/rev       read: current revision
package fsys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"9fans.net/go/plan9"

	"github.com/elizafairlady/exercises/ui/proto"
)

// Provider is what the server needs from the session and renderer.
type Provider interface {
	TreeText() (string, error)
	HandleAction(a *proto.Action)
	Focus() string
	SetFocus(id string)
	ScreenText() (string, error)
	Rev() uint64
}

const (
	qRoot = iota
	qTree
	qActions
	qFocus
	qScreen
	qRev
)

type file struct {
	name string
	path uint64
	perm plan9.Perm
}

var files = []file{
	{"tree", qTree, 0444},
	{"actions", qActions, 0222},
	{"focus", qFocus, 0666},
	{"screen", qScreen, 0444},
	{"rev", qRev, 0444},
}

func lookup(name string) (file, bool) {
	for _, f := range files {
		if f.name == name {
			return f, true
		}
	}
	return file{}, false
}

var rootQid = plan9.Qid{Type: plan9.QTDIR, Path: qRoot}

const (
	minMsize = 256
	maxMsize = 65536
)

// Server is a 9P2000 server for one session. Each connection has its
// own fid table.
type Server struct {
	prov Provider
	log  *slog.Logger
	now  func() time.Time
}

// New creates a server backed by prov. A nil logger discards.
func New(prov Provider, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{prov: prov, log: log.With("component", "fsys"), now: time.Now}
}

// Listen accepts connections on network/addr until ctx is done.
func (s *Server) Listen(ctx context.Context, network, addr string) error {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return fmt.Errorf("fsys: listen %s: %w", addr, err)
	}
	s.log.Info("listening", "network", network, "addr", ln.Addr().String())
	return s.serveListener(ctx, ln)
}

func (s *Server) serveListener(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fsys: accept: %w", err)
		}
		go s.Serve(nc)
	}
}

// Post posts the server to /srv/<name> so clients can mount it. Only
// Plan 9 has a /srv; elsewhere it fails.
func (s *Server) Post(name string) error {
	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("fsys: pipe: %w", err)
	}
	srvPath := "/srv/" + name
	os.Remove(srvPath)
	f, err := os.Create(srvPath)
	if err != nil {
		r.Close()
		w.Close()
		return fmt.Errorf("fsys: create %s: %w", srvPath, err)
	}
	_, err = fmt.Fprintf(f, "%d", r.Fd())
	f.Close()
	r.Close()
	if err != nil {
		w.Close()
		return fmt.Errorf("fsys: post %s: %w", srvPath, err)
	}
	go s.Serve(w)
	return nil
}

// Serve speaks 9P on rwc until it fails or is closed.
func (s *Server) Serve(rwc io.ReadWriteCloser) {
	c := &conn{srv: s, rwc: rwc, msize: 8192 + plan9.IOHDRSIZE, fids: make(map[uint32]*fid)}
	c.serve()
}

type fid struct {
	qid  plan9.Qid
	open bool
	data []byte // snapshot taken at open, refreshed on offset 0
}

type conn struct {
	srv   *Server
	rwc   io.ReadWriteCloser
	msize uint32

	mu   sync.Mutex
	fids map[uint32]*fid
}

func (c *conn) getFid(id uint32) *fid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fids[id]
}

func (c *conn) setFid(id uint32, f *fid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fids[id] = f
}

func (c *conn) delFid(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fids, id)
}

func (c *conn) serve() {
	defer c.rwc.Close()
	for {
		tx, err := plan9.ReadFcall(c.rwc)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, net.ErrClosed) {
				c.srv.log.Warn("read fcall", "err", err)
			}
			return
		}
		rx := c.handle(tx)
		rx.Tag = tx.Tag
		if err := plan9.WriteFcall(c.rwc, rx); err != nil {
			c.srv.log.Warn("write fcall", "err", err)
			return
		}
	}
}

func rerror(format string, args ...any) *plan9.Fcall {
	return &plan9.Fcall{Type: plan9.Rerror, Ename: fmt.Sprintf(format, args...)}
}

func (c *conn) handle(tx *plan9.Fcall) *plan9.Fcall {
	switch tx.Type {
	case plan9.Tversion:
		return c.tversion(tx)
	case plan9.Tauth:
		return rerror("authentication not required")
	case plan9.Tattach:
		c.setFid(tx.Fid, &fid{qid: rootQid})
		return &plan9.Fcall{Type: plan9.Rattach, Qid: rootQid}
	case plan9.Tflush:
		return &plan9.Fcall{Type: plan9.Rflush}
	case plan9.Twalk:
		return c.twalk(tx)
	case plan9.Topen:
		return c.topen(tx)
	case plan9.Tread:
		return c.tread(tx)
	case plan9.Twrite:
		return c.twrite(tx)
	case plan9.Tclunk:
		c.delFid(tx.Fid)
		return &plan9.Fcall{Type: plan9.Rclunk}
	case plan9.Tstat:
		return c.tstat(tx)
	case plan9.Tcreate, plan9.Tremove, plan9.Twstat:
		return rerror("permission denied")
	default:
		return rerror("bad fcall type %d", tx.Type)
	}
}

func (c *conn) tversion(tx *plan9.Fcall) *plan9.Fcall {
	if tx.Msize < minMsize {
		return rerror("msize %d too small", tx.Msize)
	}
	c.msize = min(tx.Msize, maxMsize)
	version := plan9.VERSION9P
	if !strings.HasPrefix(tx.Version, "9P2000") {
		version = "unknown"
	}
	return &plan9.Fcall{Type: plan9.Rversion, Msize: c.msize, Version: version}
}

func (c *conn) twalk(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("fid not in use")
	}
	if f.open {
		return rerror("walk of open fid")
	}
	cur := f.qid
	wqid := make([]plan9.Qid, 0, len(tx.Wname))
	for _, name := range tx.Wname {
		if cur.Type&plan9.QTDIR == 0 {
			break
		}
		if name == ".." {
			cur = rootQid
		} else if fl, ok := lookup(name); ok {
			cur = plan9.Qid{Type: plan9.QTFILE, Path: fl.path}
		} else {
			break
		}
		wqid = append(wqid, cur)
	}
	if len(wqid) == 0 && len(tx.Wname) > 0 {
		return rerror("file does not exist")
	}
	if len(wqid) == len(tx.Wname) {
		c.setFid(tx.Newfid, &fid{qid: cur})
	}
	return &plan9.Fcall{Type: plan9.Rwalk, Wqid: wqid}
}

func (c *conn) topen(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("fid not in use")
	}
	mode := tx.Mode &^ plan9.OTRUNC
	perm := c.perm(f.qid.Path)
	switch {
	case mode == plan9.OREAD && perm&0444 == 0,
		mode == plan9.OWRITE && perm&0222 == 0,
		mode == plan9.ORDWR && perm&0666 != 0666,
		mode == plan9.OEXEC:
		return rerror("permission denied")
	}
	f.open = true
	if mode != plan9.OWRITE {
		data, err := c.contents(f.qid.Path)
		if err != nil {
			return rerror("%v", err)
		}
		f.data = data
	}
	return &plan9.Fcall{Type: plan9.Ropen, Qid: f.qid, Iounit: c.msize - plan9.IOHDRSIZE}
}

func (c *conn) perm(path uint64) plan9.Perm {
	if path == qRoot {
		return plan9.DMDIR | 0555
	}
	for _, fl := range files {
		if fl.path == path {
			return fl.perm
		}
	}
	return 0
}

// contents returns the current bytes of a file or directory.
func (c *conn) contents(path uint64) ([]byte, error) {
	p := c.srv.prov
	switch path {
	case qRoot:
		var buf []byte
		for _, fl := range files {
			b, err := c.srv.dir(fl.name, fl.path, fl.perm).Bytes()
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
		return buf, nil
	case qTree:
		s, err := p.TreeText()
		return []byte(s), err
	case qFocus:
		return []byte(p.Focus() + "\n"), nil
	case qScreen:
		s, err := p.ScreenText()
		return []byte(s), err
	case qRev:
		return []byte(strconv.FormatUint(p.Rev(), 10) + "\n"), nil
	}
	return nil, nil
}

func (c *conn) tread(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil || !f.open {
		return rerror("fid not open")
	}
	if tx.Offset == 0 && f.qid.Path != qRoot {
		data, err := c.contents(f.qid.Path)
		if err != nil {
			return rerror("%v", err)
		}
		f.data = data
	}
	if f.qid.Path == qRoot {
		return &plan9.Fcall{Type: plan9.Rread, Data: dirRead(f.data, tx.Offset, tx.Count)}
	}
	return &plan9.Fcall{Type: plan9.Rread, Data: sliceRead(f.data, tx.Offset, tx.Count)}
}

func (c *conn) twrite(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil || !f.open {
		return rerror("fid not open")
	}
	p := c.srv.prov
	switch f.qid.Path {
	case qActions:
		var acts []*proto.Action
		for line := range strings.SplitSeq(string(tx.Data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			a, err := proto.ParseAction(line)
			if err != nil {
				return rerror("%v", err)
			}
			acts = append(acts, a)
		}
		for _, a := range acts {
			p.HandleAction(a)
		}
	case qFocus:
		p.SetFocus(strings.TrimSpace(string(tx.Data)))
	default:
		return rerror("write not allowed")
	}
	return &plan9.Fcall{Type: plan9.Rwrite, Count: uint32(len(tx.Data))}
}

func (c *conn) tstat(tx *plan9.Fcall) *plan9.Fcall {
	f := c.getFid(tx.Fid)
	if f == nil {
		return rerror("fid not in use")
	}
	var d *plan9.Dir
	if f.qid.Path == qRoot {
		d = c.srv.dir("/", qRoot, plan9.DMDIR|0555)
	} else {
		for _, fl := range files {
			if fl.path == f.qid.Path {
				d = c.srv.dir(fl.name, fl.path, fl.perm)
			}
		}
	}
	if d == nil {
		return rerror("unknown qid")
	}
	b, err := d.Bytes()
	if err != nil {
		return rerror("%v", err)
	}
	return &plan9.Fcall{Type: plan9.Rstat, Stat: b}
}

func (s *Server) dir(name string, path uint64, perm plan9.Perm) *plan9.Dir {
	t := uint32(s.now().Unix())
	q := plan9.Qid{Type: plan9.QTFILE, Path: path}
	if perm&plan9.DMDIR != 0 {
		q.Type = plan9.QTDIR
	}
	return &plan9.Dir{
		Qid:   q,
		Mode:  perm,
		Atime: t,
		Mtime: t,
		Name:  name,
		Uid:   "ui",
		Gid:   "ui",
		Muid:  "ui",
	}
}

// dirRead is sliceRead for directories: it returns only whole stat
// entries.
func dirRead(data []byte, offset uint64, count uint32) []byte {
	if offset >= uint64(len(data)) {
		return nil
	}
	rest := data[offset:]
	n := 0
	for n+2 <= len(rest) {
		size := 2 + (int(rest[n]) | int(rest[n+1])<<8)
		if n+size > len(rest) || uint64(n+size) > uint64(count) {
			break
		}
		n += size
	}
	return rest[:n]
}

func sliceRead(data []byte, offset uint64, count uint32) []byte {
	if offset >= uint64(len(data)) {
		return nil
	}
	end := min(offset+uint64(count), uint64(len(data)))
	return data[offset:end]
}
