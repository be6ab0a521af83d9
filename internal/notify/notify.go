// Package notify keeps short-lived status messages.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

// Kind classifies a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Toast is one status message.
type Toast struct {
	Kind Kind
	Text string
	At   time.Time
}

// Center collects toasts and expires them after the TTL.
type Center struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	toasts []Toast
}

// NewCenter returns a Center. A zero ttl uses DefaultTTL; a nil now uses
// time.Now.
func NewCenter(ttl time.Duration, now func() time.Time) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Center{ttl: ttl, now: now}
}

// Push records a toast stamped with the current time.
func (c *Center) Push(kind Kind, text string) Toast {
	t := Toast{Kind: kind, Text: text, At: c.now()}
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
	return t
}

// PushSuccess is Push(Success, text).
func (c *Center) PushSuccess(text string) Toast { return c.Push(Success, text) }

// PushError is Push(Error, text).
func (c *Center) PushError(text string) Toast { return c.Push(Error, text) }

// Active drops expired toasts and returns the rest, oldest first.
func (c *Center) Active() []Toast {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Sub(t.At) < c.ttl {
			kept = append(kept, t)
		}
	}
	c.toasts = kept
	return append([]Toast(nil), kept...)
}

// Latest returns the newest active toast.
func (c *Center) Latest() (Toast, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Toast{}, false
	}
	return active[len(active)-1], true
}

// TTL returns the expiry interval.
func (c *Center) TTL() time.Duration { return c.ttl }
