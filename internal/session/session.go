// Package session holds the client's session context: the persisted bearer
// token plus a subscription point for components that react to sign-in,
// sign-out and forced expiry (the navigation guard and the UIs).
package session

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"tasker/internal/storage"
)

const (
	// TokenKey is the storage key holding the raw session token.
	TokenKey = "jwt"
	// LoginPath is where an expired session is sent.
	LoginPath = "/login"
)

type EventKind int

const (
	EventSignedIn EventKind = iota + 1
	EventSignedOut
	// EventExpired is published when the server rejected the credential.
	// Subscribers must navigate to Event.Redirect.
	EventExpired
	// EventDiscarded is published when a stored token could not be decoded.
	EventDiscarded
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventExpired:
		return "expired"
	case EventDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind     EventKind
	Redirect string
}

type Context struct {
	store  storage.Store
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func New(store storage.Store, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		store:  store,
		logger: logger,
		subs:   map[int]func(Event){},
	}
}

// Token returns the stored token, or "" when there is none. Storage failures
// are logged and read as "no session".
func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenLocked()
}

func (c *Context) tokenLocked() string {
	token, err := c.store.Get(TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("read session token", "err", err)
		}
		return ""
	}
	return strings.TrimSpace(token)
}

// Present reports whether a session token is stored.
func (c *Context) Present() bool {
	return c.Token() != ""
}

// Save persists token and publishes EventSignedIn.
func (c *Context) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is empty")
	}
	c.mu.Lock()
	err := c.store.Set(TokenKey, token)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(Event{Kind: EventSignedIn})
	return nil
}

// Clear removes the token (logout) and publishes EventSignedOut.
func (c *Context) Clear() error {
	return c.remove(Event{Kind: EventSignedOut})
}

// Discard removes a token that failed to decode.
func (c *Context) Discard() error {
	return c.remove(Event{Kind: EventDiscarded})
}

// Expire removes the token after an authentication rejection and asks
// subscribers to navigate to the login surface.
func (c *Context) Expire() {
	if err := c.remove(Event{Kind: EventExpired, Redirect: LoginPath}); err != nil {
		c.logger.Error("clear expired session", "err", err)
	}
}

func (c *Context) remove(ev Event) error {
	c.mu.Lock()
	err := c.store.Delete(TokenKey)
	c.mu.Unlock()
	// 即使删除失败也通知订阅者，让内存中的身份被清掉。
	// Subscribers are told even if the delete failed so in-memory identity is dropped.
	c.publish(ev)
	return err
}

// Subscribe registers fn for every future event and returns a function that
// removes it. fn runs on the goroutine that caused the event.
func (c *Context) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Context) publish(ev Event) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	// 按订阅顺序回调 / Deliver in subscription order
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.mu.Unlock()

	c.logger.Debug("session event", "kind", ev.Kind.String())
	for _, fn := range fns {
		fn(ev)
	}
}
