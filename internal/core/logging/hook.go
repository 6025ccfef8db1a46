package logging

import "github.com/rs/zerolog"

// ContextHook stamps Fields from the event's context onto the event.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	f := FieldsFrom(e.GetCtx())
	if f.SessionID != "" {
		e.Str("session_id", f.SessionID)
	}
	if f.Pivot != "" {
		e.Str("pivot", f.Pivot)
	}
}
