package smithkit

import (
	"context"

	"github.com/google/uuid"

	"github.com/smithkit/smithkit/execution"
	"github.com/smithkit/smithkit/tracing"
	"github.com/smithkit/smithkit/transport"
)

const (
	invocationIDHeader = "Amz-Sdk-Invocation-Id"
	requestIDHeader    = "X-Amzn-Requestid"
	userAgentHeader    = "User-Agent"
)

// invocationIDMiddleware stamps the per-invocation id on every attempt so
// the service can collapse retried requests.
func invocationIDMiddleware() execution.Middleware {
	return execution.MiddlewareFunc{
		ID: "invocation-id",
		Fn: func(ctx context.Context, ec *execution.Context, subject interface{}, next execution.Handler) (interface{}, error) {
			if req, ok := subject.(*transport.RequestBuilder); ok {
				id, ok := execution.Get(ec, AttrInvocationID)
				if !ok {
					id = uuid.NewString()
					execution.Set(ec, AttrInvocationID, id)
				}
				req.Headers.Set(invocationIDHeader, id)
			}
			return next(ctx, subject)
		},
	}
}

// userAgentMiddleware sets the runtime's user agent unless the caller
// already chose one.
func userAgentMiddleware(agent string) execution.Middleware {
	return execution.MiddlewareFunc{
		ID: "user-agent",
		Fn: func(ctx context.Context, ec *execution.Context, subject interface{}, next execution.Handler) (interface{}, error) {
			if req, ok := subject.(*transport.RequestBuilder); ok {
				if !req.Headers.Has(userAgentHeader) {
					req.Headers.Set(userAgentHeader, agent)
				}
			}
			return next(ctx, subject)
		},
	}
}

// spanMiddleware opens a per-attempt span and propagates the trace context
// on the wire.
func spanMiddleware() execution.Middleware {
	return execution.MiddlewareFunc{
		ID: "span",
		Fn: func(ctx context.Context, ec *execution.Context, subject interface{}, next execution.Handler) (interface{}, error) {
			operation, _ := execution.Get(ec, AttrOperationName)
			span, ctx := tracing.StartSpan(ctx, operation)
			defer span.Finish()

			if req, ok := subject.(*transport.RequestBuilder); ok {
				_ = tracing.InjectHTTP(span, func(k, v string) { req.Headers.Set(k, v) })
			}
			result, err := next(ctx, subject)
			if err != nil {
				tracing.LogError(span, err)
			}
			return result, err
		},
	}
}

// completeResponseMiddleware is the default finalizer: it releases the
// response body when nobody consumed it.
func completeResponseMiddleware() execution.Middleware {
	return execution.MiddlewareFunc{
		ID: "complete-response",
		Fn: func(ctx context.Context, ec *execution.Context, subject interface{}, next execution.Handler) (interface{}, error) {
			if resp, ok := execution.Get(ec, AttrResponse); ok && resp != nil {
				resp.Complete()
			}
			return next(ctx, subject)
		},
	}
}
