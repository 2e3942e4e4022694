package ui

import (
	"fmt"
	"strings"

	"github.com/elizafairlady/exercises/ui/fsys"
	"github.com/elizafairlady/exercises/ui/plain"
	"github.com/elizafairlady/exercises/ui/uifs"
)

// SrvName returns the /srv name for a session titled title:
// "ui.<title>", lowercased, with unsafe characters replaced.
func SrvName(title string) string {
	safe := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, title)
	if safe == "" {
		safe = "app"
	}
	return fmt.Sprintf("ui.%s", strings.ToLower(safe))
}

// stateProvider adapts the session and the plain renderer into the
// fsys.Provider interface for the 9P server.
type stateProvider struct {
	*uifs.UIFS
	r *plain.Renderer
}

var _ fsys.Provider = (*stateProvider)(nil)

func (p *stateProvider) ScreenText() (string, error) {
	t, err := p.Tree()
	if err != nil {
		return "", err
	}
	return p.r.Render(t, p.Focus()), nil
}
