// Package testbus wraps a running EventBus with a recorder for tests.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/vbisect/internal/core/eventbus"
)

// Bus is a started EventBus that records every publish, including events
// published from inside subscribers.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	events  []eventbus.Event
	payload []any
	changed chan struct{} // closed and replaced on every record
}

// New starts a recording bus that stops when the test ends.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		changed:  make(chan struct{}),
	}
	tb.OnPublish(tb.record)

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, event)
	tb.payload = append(tb.payload, payload)
	close(tb.changed)
	tb.changed = make(chan struct{})
}

// Payloads returns the recorded payloads for event, oldest first.
func (tb *Bus) Payloads(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	var out []any
	for i, e := range tb.events {
		if e == event {
			out = append(out, tb.payload[i])
		}
	}
	return out
}

// PayloadsOf returns the recorded payloads for event that have type T.
func PayloadsOf[T any](tb *Bus, event eventbus.Event) []T {
	var out []T
	for _, p := range tb.Payloads(event) {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// WaitFor blocks until event has been published or timeout passes.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		tb.mu.Lock()
		changed := tb.changed
		seen := false
		for _, e := range tb.events {
			if e == event {
				seen = true
				break
			}
		}
		tb.mu.Unlock()

		if seen {
			return true
		}
		select {
		case <-changed:
		case <-deadline:
			return false
		}
	}
}

// AssertPublished fails the test if event is not published within half a
// second.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published", event)
	}
}

// AssertNotPublished fails the test if event is published within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if tb.WaitFor(event, wait) {
		t.Errorf("expected event %q not to be published", event)
	}
}
