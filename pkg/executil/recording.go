package executil

import (
	"context"
	"io"
	"strings"
	"sync"
)

// RecordingExecutor records scripts instead of running them.
type RecordingExecutor struct {
	// Handler decides the output and error for each script. When nil every
	// script succeeds with no output.
	Handler func(s Script) ([]byte, error)

	// Errors fails scripts by the first word of their source, e.g.
	// {"install": err}. It is consulted before Handler.
	Errors map[string]error

	mu      sync.Mutex
	scripts []Script
}

var _ Executor = (*RecordingExecutor)(nil)

// Output records s and returns the handler's result.
func (e *RecordingExecutor) Output(_ context.Context, s Script) ([]byte, error) {
	return e.record(s)
}

// Stream records s and writes the handler's output to stdout.
func (e *RecordingExecutor) Stream(_ context.Context, s Script, stdout, _ io.Writer) error {
	out, err := e.record(s)
	if len(out) > 0 && stdout != nil {
		_, _ = stdout.Write(out)
	}
	return err
}

func (e *RecordingExecutor) record(s Script) ([]byte, error) {
	e.mu.Lock()
	e.scripts = append(e.scripts, s)
	handler := e.Handler
	err, failed := e.Errors[program(s.Source)]
	e.mu.Unlock()

	if failed {
		return nil, err
	}
	if handler == nil {
		return nil, nil
	}
	return handler(s)
}

// Recorded returns every script run so far, in order.
func (e *RecordingExecutor) Recorded() []Script {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Script(nil), e.scripts...)
}

// Scripts returns the Source of every recorded script, in order.
func (e *RecordingExecutor) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.scripts))
	for _, s := range e.scripts {
		out = append(out, s.Source)
	}
	return out
}

func program(source string) string {
	if fields := strings.Fields(source); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
