package transport

import "context"

// Engine executes a finalized request. Implementations must honor
// cancellation of ctx and must not mutate the builder.
type Engine interface {
	RoundTrip(ctx context.Context, req *RequestBuilder) (*Response, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req *RequestBuilder) (*Response, error)

func (f EngineFunc) RoundTrip(ctx context.Context, req *RequestBuilder) (*Response, error) {
	return f(ctx, req)
}
