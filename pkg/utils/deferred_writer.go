package utils

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DeferredWriter holds output in memory until Flush decides where it goes.
// With a positive Limit only the last Limit bytes are kept; Flush then
// starts with a line noting how much was dropped. Safe for concurrent use.
type DeferredWriter struct {
	Limit int

	mu      sync.Mutex
	buf     bytes.Buffer
	dropped int64
}

// Write stores p, trimming the oldest bytes beyond Limit.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(p)
	if d.Limit > 0 && len(p) > d.Limit {
		d.dropped += int64(len(p) - d.Limit)
		p = p[len(p)-d.Limit:]
	}

	d.buf.Write(p)

	if over := d.buf.Len() - d.Limit; d.Limit > 0 && over > 0 {
		d.buf.Next(over)
		d.dropped += int64(over)
	}
	return n, nil
}

// Len returns the number of buffered bytes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush writes all buffered data to w and clears the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dropped > 0 {
		if _, err := fmt.Fprintf(w, "[... %d bytes omitted ...]\n", d.dropped); err != nil {
			return err
		}
		d.dropped = 0
	}

	if d.buf.Len() == 0 {
		return nil
	}

	_, err := d.buf.WriteTo(w)
	return err
}
