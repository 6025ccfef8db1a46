package logging

import "context"

// Fields identify the bisect work a context belongs to. ContextHook copies
// them onto events logged with .Ctx(ctx).
type Fields struct {
	SessionID string
	Pivot     string // version under test
}

type fieldsKey struct{}

// FieldsFrom returns the fields stored on ctx, or the zero value.
func FieldsFrom(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	f, _ := ctx.Value(fieldsKey{}).(Fields)
	return f
}

// WithSessionID returns a context that logs under the given bisect session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	f := FieldsFrom(ctx)
	f.SessionID = sessionID
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithPivot returns a context that logs the version under test.
func WithPivot(ctx context.Context, version string) context.Context {
	f := FieldsFrom(ctx)
	f.Pivot = version
	return context.WithValue(ctx, fieldsKey{}, f)
}
