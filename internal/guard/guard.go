// Package guard decides which surface the user may enter. It only asks the
// session whether a token is present.
package guard

import (
	"strings"

	"tasker/internal/session"
)

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
)

type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// Routes 路由表；只有首页需要登录
// Routes is the route table; only home requires a session
var Routes = []Route{
	{Path: PathHome, Name: "home", RequiresAuth: true},
	{Path: PathLogin, Name: "login"},
	{Path: PathRegister, Name: "register"},
}

// Session is what the guard needs from the session context.
type Session interface {
	Present() bool
	Subscribe(fn func(session.Event)) (unsubscribe func())
}

type Guard struct {
	session Session
	routes  map[string]Route
}

func New(sess Session) *Guard {
	routes := make(map[string]Route, len(Routes))
	for _, r := range Routes {
		routes[r.Path] = r
	}
	return &Guard{session: sess, routes: routes}
}

// Lookup finds the route for path. Unknown paths fall back to home.
func (g *Guard) Lookup(path string) Route {
	path = strings.TrimSpace(path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = PathHome
	}
	if r, ok := g.routes[path]; ok {
		return r
	}
	return g.routes[PathHome]
}

// Resolve returns the path to actually enter: a protected route without a
// session sends the user to login.
func (g *Guard) Resolve(path string) string {
	r := g.Lookup(path)
	if r.RequiresAuth && !g.session.Present() {
		return PathLogin
	}
	return r.Path
}

// OnRedirect calls fn with the target path whenever the session is expired
// by the server.
func (g *Guard) OnRedirect(fn func(path string)) (cancel func()) {
	return g.session.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventExpired && ev.Redirect != "" {
			fn(g.Resolve(ev.Redirect))
		}
	})
}
