package tui

import (
	"time"

	"github.com/colonyops/vbisect/internal/core/eventbus"
)

const (
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

// toastTTL is how long a toast stays up per level. Errors linger so a failed
// activation is not missed while the user is away from the terminal.
var toastTTL = map[eventbus.Level]time.Duration{
	eventbus.LevelInfo:    4 * time.Second,
	eventbus.LevelWarning: 7 * time.Second,
	eventbus.LevelError:   12 * time.Second,
}

func ttlFor(l eventbus.Level) time.Duration {
	if d, ok := toastTTL[l]; ok {
		return d
	}
	return toastTTL[eventbus.LevelInfo]
}

type toast struct {
	notification eventbus.NotificationPublishedPayload
	remaining    time.Duration
	count        int // identical notifications folded into this one
}

// ToastController keeps the stack of active notifications, oldest first.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a notification. A repeat of the newest toast bumps its count and
// restarts its timer instead of stacking. Beyond defaultMaxToasts the oldest
// toast is evicted.
func (c *ToastController) Push(n eventbus.NotificationPublishedPayload) {
	if last := len(c.toasts) - 1; last >= 0 && c.toasts[last].notification == n {
		c.toasts[last].count++
		c.toasts[last].remaining = ttlFor(n.Level)
		return
	}

	c.toasts = append(c.toasts, toast{
		notification: n,
		remaining:    ttlFor(n.Level),
		count:        1,
	})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest (bottom-most) toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking reports whether a tick is scheduled; at most one runs at a time.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
