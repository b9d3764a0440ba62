package trace

import "context"

type (
	tracerKey struct{}
	parentKey struct{}
)

// WithTracer stores t in ctx. A nil tracer stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithParent makes s the parent of spans begun from the returned context.
func WithParent(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, parentKey{}, s.ID())
}

// ParentID returns the span id stored by WithParent, or 0.
func ParentID(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(parentKey{}).(uint64)
	return id
}
