package trace

import "context"

type ctxKey struct{}

// WithRecorder stores a recorder in the context.
func WithRecorder(ctx context.Context, rec Recorder) context.Context {
	return context.WithValue(ctx, ctxKey{}, rec)
}

// FromContext extracts the recorder from the context.
// Returns Nop() if none is stored.
func FromContext(ctx context.Context) Recorder {
	if rec, ok := ctx.Value(ctxKey{}).(Recorder); ok && rec != nil {
		return rec
	}
	return Nop()
}
