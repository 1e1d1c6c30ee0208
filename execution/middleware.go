package execution

import "context"

// Handler is the downstream continuation a middleware delegates to.
type Handler func(ctx context.Context, subject interface{}) (interface{}, error)

// Middleware transforms a subject and delegates downstream. It must call
// next exactly once, unless it short-circuits by returning a complete
// result. Errors abort the current attempt and flow to the retry strategy
// untouched; cancellation must propagate unchanged.
type Middleware interface {
	Name() string
	Handle(ctx context.Context, ec *Context, subject interface{}, next Handler) (interface{}, error)
}

// MiddlewareFunc adapts a named function to the Middleware interface.
type MiddlewareFunc struct {
	ID string
	Fn func(ctx context.Context, ec *Context, subject interface{}, next Handler) (interface{}, error)
}

func (m MiddlewareFunc) Name() string { return m.ID }

func (m MiddlewareFunc) Handle(ctx context.Context, ec *Context, subject interface{}, next Handler) (interface{}, error) {
	return m.Fn(ctx, ec, subject, next)
}

// Position selects where Intercept places a middleware within its phase.
type Position int

const (
	// Before inserts at the head of the phase.
	Before Position = iota
	// After appends at the tail of the phase.
	After
)
