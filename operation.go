package smithkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/smithkit/smithkit/execution"
	"github.com/smithkit/smithkit/jsonstream"
	"github.com/smithkit/smithkit/retry"
	"github.com/smithkit/smithkit/signer"
	"github.com/smithkit/smithkit/transport"
)

// Operation binds generated serializer and deserializer code to the
// pipeline for one modeled operation.
type Operation[I, O any] struct {
	Name string

	// ExpectedStatus is the success status; zero accepts any 2xx.
	ExpectedStatus int

	// Serialize turns the typed input into a request builder. It runs once
	// per invocation; attempts clone the builder.
	Serialize func(ctx context.Context, ec *execution.Context, input I) (*transport.RequestBuilder, error)

	// Deserialize turns a success response into the modeled output.
	Deserialize func(ctx context.Context, ec *execution.Context, resp *transport.Response) (O, error)

	// DeserializeError optionally maps an error response to a modeled
	// error; nil falls back to the generic service error sniffer.
	DeserializeError func(ctx context.Context, resp *transport.Response, body []byte) error

	// Signing parameterizes the sign phase; nil sends unsigned requests.
	Signing *signer.SigningConfig

	// Policy overrides the default retry classification.
	Policy retry.Policy[O]
}

// DeserializationError marks a per-attempt codec failure. The default
// policy treats it as fatal.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string { return "deserialization failed: " + e.Err.Error() }

func (e *DeserializationError) Unwrap() error { return e.Err }

// BreakerOpenError reports a transmit refused by an open circuit breaker.
type BreakerOpenError struct {
	Endpoint string
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Endpoint)
}

// Execute runs one operation invocation through the pipeline under the
// client's retry strategy: serialize once, then per attempt mutate, sign,
// transmit and deserialize; finalize exactly once at the end, on both
// paths. Cancellation surfaces untransformed.
func Execute[I, O any](ctx context.Context, c *Client, op *Operation[I, O], input I) (O, error) {
	var zero O

	ec := execution.NewContext()
	execution.Set(ec, AttrOperationName, op.Name)
	if c.creds != nil {
		execution.Set(ec, AttrCredentialsProvider, c.creds)
	}
	if op.Signing != nil {
		execution.Set(ec, AttrSigningConfig, op.Signing)
	}
	if op.ExpectedStatus != 0 {
		execution.Set(ec, AttrExpectedStatus, op.ExpectedStatus)
	}

	output, err := executePhases(ctx, c, ec, op, input)
	err = c.pipeline.RunFinalize(ctx, ec, nil, err)
	if err != nil {
		return zero, c.operationError(ec, op.Name, err)
	}
	return output, nil
}

func executePhases[I, O any](ctx context.Context, c *Client, ec *execution.Context, op *Operation[I, O], input I) (O, error) {
	var zero O

	subject, err := c.pipeline.RunPhase(ctx, ec, input, execution.PhaseInitialize, nil)
	if err != nil {
		return zero, err
	}

	subject, err = c.pipeline.RunPhase(ctx, ec, subject, execution.PhaseSerialize,
		func(ctx context.Context, subject interface{}) (interface{}, error) {
			return op.Serialize(ctx, ec, subject.(I))
		})
	if err != nil {
		return zero, err
	}
	builder, ok := subject.(*transport.RequestBuilder)
	if !ok {
		return zero, fmt.Errorf("serialize phase produced %T, not a request builder", subject)
	}

	policy := op.Policy
	if policy == nil {
		policy = defaultPolicy[O]()
	}

	outcome, err := retry.Retry(ctx, c.strategy, policy, func(ctx context.Context, attempt int) (O, error) {
		execution.Set(ec, AttrAttempt, attempt)
		c.metrics.IncAttempts(op.Name)
		return runAttempt(ctx, c, ec, op, builder.Clone())
	})
	if err != nil {
		return zero, err
	}
	return outcome.Result, nil
}

// runAttempt runs the per-attempt phases on a fresh clone of the
// serialized request.
func runAttempt[I, O any](ctx context.Context, c *Client, ec *execution.Context, op *Operation[I, O], req *transport.RequestBuilder) (O, error) {
	var zero O

	subject, err := c.pipeline.RunPhase(ctx, ec, req, execution.PhaseMutate, nil)
	if err != nil {
		return zero, err
	}
	subject, err = c.pipeline.RunPhase(ctx, ec, subject, execution.PhaseSign, nil)
	if err != nil {
		return zero, err
	}

	resp, err := c.transmit(ctx, ec, subject.(*transport.RequestBuilder))
	if err != nil {
		return zero, err
	}
	execution.Set(ec, AttrResponse, resp)
	if id, ok := resp.Headers.Get(requestIDHeader); ok {
		execution.Set(ec, AttrRequestID, id)
	}

	if !statusAccepted(ec, resp.StatusCode) {
		defer resp.Complete()
		return zero, deserializeError(ctx, c, op, resp)
	}

	out, err := c.pipeline.RunPhase(ctx, ec, resp, execution.PhaseDeserialize,
		func(ctx context.Context, subject interface{}) (interface{}, error) {
			return op.Deserialize(ctx, ec, subject.(*transport.Response))
		})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return zero, err
		}
		return zero, &DeserializationError{Err: err}
	}
	return out.(O), nil
}

// transmit runs the Transmit phase with the engine as its terminal,
// guarded by the endpoint's circuit breaker when one is configured.
func (c *Client) transmit(ctx context.Context, ec *execution.Context, req *transport.RequestBuilder) (*transport.Response, error) {
	endpoint := ""
	if req.URL != nil {
		endpoint = req.URL.HostPort()
	}

	var done func(bool)
	if c.breakers != nil {
		if breaker := c.breakers.Get(endpoint); breaker != nil {
			var allowed bool
			done, allowed = breaker.Allow()
			if !allowed {
				return nil, &BreakerOpenError{Endpoint: endpoint}
			}
		}
	}

	subject, err := c.pipeline.RunPhase(ctx, ec, req, execution.PhaseTransmit,
		func(ctx context.Context, subject interface{}) (interface{}, error) {
			return c.engine.RoundTrip(ctx, subject.(*transport.RequestBuilder))
		})
	if done != nil {
		done(err == nil)
	}
	if err != nil {
		return nil, err
	}
	resp, ok := subject.(*transport.Response)
	if !ok {
		return nil, fmt.Errorf("transmit phase produced %T, not a response", subject)
	}
	return resp, nil
}

// deserializeError maps an error status to a modeled error when the
// operation provides a mapper, falling back to the generic sniffer.
func deserializeError[I, O any](ctx context.Context, c *Client, op *Operation[I, O], resp *transport.Response) error {
	body, readErr := resp.ReadAll(ctx)
	if readErr != nil {
		body = nil
	}
	if op.DeserializeError != nil {
		if err := op.DeserializeError(ctx, resp, body); err != nil {
			return err
		}
	}
	err := genericServiceError(resp, body)
	if err.Throttling {
		c.metrics.IncThrottles(op.Name)
	}
	return err
}

func statusAccepted(ec *execution.Context, status int) bool {
	if expected, ok := execution.Get(ec, AttrExpectedStatus); ok {
		return status == expected
	}
	return status >= 200 && status < 300
}

// defaultPolicy is the stock attempt classification: success succeeds,
// cancellation and codec or signing failures terminate, throttling and
// server faults retry.
func defaultPolicy[O any]() retry.Policy[O] {
	return retry.PolicyFunc[O](func(result O, err error) retry.Directive {
		if err == nil {
			return retry.Succeed()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return retry.Fail()
		}

		var deser *DeserializationError
		if errors.As(err, &deser) {
			return retry.Fail()
		}
		var operr *OperationError
		if errors.As(err, &operr) && operr.Kind == ErrSigning {
			return retry.Fail()
		}

		var service *ServiceError
		if errors.As(err, &service) {
			switch {
			case service.Throttling:
				return retry.RetryWith(retry.ReasonThrottling)
			case service.Fault == FaultServer:
				return retry.RetryWith(retry.ReasonServerSide)
			default:
				return retry.Fail()
			}
		}

		var open *BreakerOpenError
		if errors.As(err, &open) {
			return retry.RetryWith(retry.ReasonServerSide)
		}

		// Network and IO failures.
		return retry.RetryWith(retry.ReasonTransient)
	})
}

// throttlingCodes are service codes treated as throttling regardless of
// status.
var throttlingCodes = map[string]struct{}{
	"Throttling":                             {},
	"ThrottlingException":                    {},
	"ThrottledException":                     {},
	"TooManyRequestsException":               {},
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"SlowDown":                               {},
}

// genericServiceError builds a ServiceError from the status line and the
// sniffed payload fields.
func genericServiceError(resp *transport.Response, body []byte) *ServiceError {
	headerValue, _ := resp.Headers.Get(jsonstream.ErrorTypeHeader)
	code, message := jsonstream.SniffErrorCode(headerValue, body)

	e := &ServiceError{
		Code:    code,
		Message: message,
		Status:  resp.StatusCode,
	}
	if id, ok := resp.Headers.Get(requestIDHeader); ok {
		e.RequestID = id
	}
	if _, ok := throttlingCodes[code]; ok || resp.StatusCode == 429 {
		e.Throttling = true
	}
	switch {
	case resp.StatusCode >= 500:
		e.Fault = FaultServer
	case resp.StatusCode >= 400:
		e.Fault = FaultClient
	}
	return e
}

// operationError wraps err with the invocation's identity; cancellation is
// never wrapped.
func (c *Client) operationError(ec *execution.Context, name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	oe := &OperationError{
		Operation: name,
		Kind:      classifyKind(err),
		Err:       err,
	}
	if attempt, ok := execution.Get(ec, AttrAttempt); ok {
		oe.Attempts = attempt
	}
	if id, ok := execution.Get(ec, AttrRequestID); ok {
		oe.RequestID = id
	}
	var service *ServiceError
	if errors.As(err, &service) {
		oe.Code = service.Code
	}
	var deser *DeserializationError
	if errors.As(err, &deser) {
		oe.Kind = ErrSerialization
	}
	var signing *OperationError
	if errors.As(err, &signing) && signing.Kind == ErrSigning {
		oe.Kind = ErrSigning
	}
	return oe
}
