// Package ui provides the top-level API for running an app.
//
// Example usage:
//
//	err := ui.Run(ctx, app, ui.Options{Title: "My App"})
//	if err != nil {
//		log.Fatal(err)
//	}
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/elizafairlady/exercises/ui/fsys"
	"github.com/elizafairlady/exercises/ui/plain"
	"github.com/elizafairlady/exercises/ui/term"
	"github.com/elizafairlady/exercises/ui/theme"
	"github.com/elizafairlady/exercises/ui/uifs"
	"github.com/elizafairlady/exercises/ui/view"
)

// Options configure Run.
type Options struct {
	Title string
	// Listen is a 9P address: "host:port" for TCP or "unix!/path".
	// Empty disables the listener.
	Listen string
	// Post posts the 9P server to /srv under SrvName(Title).
	Post   bool
	Theme  *theme.Theme
	Logger *slog.Logger
	// Dump prints one plain rendering instead of opening the terminal.
	Dump bool
	// Out receives dumps; nil means os.Stdout.
	Out io.Writer
}

func (o *Options) defaults() {
	if o.Theme == nil {
		o.Theme = theme.Default()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

// Run hosts app until the user quits or ctx is done.
//
// With a terminal on Out, the app runs full-screen. Otherwise it prints
// one plain rendering, unless a 9P listener is configured, in which case
// it serves headless until ctx is done.
func Run(ctx context.Context, app view.App, opts Options) error {
	opts.defaults()
	log := opts.Logger
	u := uifs.New(app, log)
	r := plain.New(opts.Out, opts.Theme)

	srv := fsys.New(&stateProvider{UIFS: u, r: r}, log)
	if opts.Post {
		if err := srv.Post(SrvName(opts.Title)); err != nil {
			log.Warn("9P post failed", "err", err)
		}
	}

	tty := isTerminal(opts.Out)
	switch {
	case opts.Dump:
		return dump(u, r, opts.Out)
	case !tty && opts.Listen != "":
		network, addr := splitAddr(opts.Listen)
		return srv.Listen(ctx, network, addr)
	case !tty:
		return dump(u, r, opts.Out)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("ui: open terminal: %w", err)
	}
	if opts.Title != "" {
		screen.SetTitle(opts.Title)
	}
	host := term.New(screen, u, opts.Theme, log)

	// Run installs the repaint hook before its first draw.
	if opts.Listen != "" {
		network, addr := splitAddr(opts.Listen)
		go func() {
			if err := srv.Listen(ctx, network, addr); err != nil {
				log.Error("9P server", "err", err)
			}
		}()
	}
	return host.Run(ctx)
}

// Script applies action lines read from in to app, then writes the
// final plain rendering to out. Blank lines and lines starting with
// '#' are skipped.
func Script(app view.App, in io.Reader, out io.Writer, th *theme.Theme) error {
	u := uifs.New(app, nil)
	r := plain.New(out, th)
	r.SetProfile(termenv.Ascii)

	sc := bufio.NewScanner(in)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := u.ProcessAction(line); err != nil {
			return fmt.Errorf("ui: script line %d: %w", lineno, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("ui: read script: %w", err)
	}
	return dump(u, r, out)
}

func dump(u *uifs.UIFS, r *plain.Renderer, out io.Writer) error {
	t, err := u.Tree()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	_, err = io.WriteString(out, r.Render(t, u.Focus()))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// splitAddr splits "net!addr" into its parts; a bare address is TCP.
func splitAddr(s string) (network, addr string) {
	if n, a, ok := strings.Cut(s, "!"); ok {
		return n, a
	}
	return "tcp", s
}
