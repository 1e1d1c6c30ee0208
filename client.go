package smithkit

import (
	"context"
	"errors"
	"time"

	"github.com/smithkit/smithkit/circuit"
	"github.com/smithkit/smithkit/credentials"
	"github.com/smithkit/smithkit/execution"
	"github.com/smithkit/smithkit/logging"
	"github.com/smithkit/smithkit/metrics"
	"github.com/smithkit/smithkit/retry"
	"github.com/smithkit/smithkit/signer"
	"github.com/smithkit/smithkit/transport"
)

const defaultUserAgent = "smithkit-go"

// Plugin installs middleware into the pipeline at client construction,
// before the pipeline freezes. There is no registration after that.
type Plugin interface {
	Register(p *execution.Pipeline)
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc func(p *execution.Pipeline)

func (f PluginFunc) Register(p *execution.Pipeline) { f(p) }

// ClientOptions assemble a Client. Engine is the only required field.
type ClientOptions struct {
	Engine      transport.Engine
	Credentials credentials.Provider

	Region  string
	Service string

	// Retry defaults to the standard strategy with a standard bucket.
	Retry *retry.Strategy
	// Breakers optionally gate transmits per endpoint.
	Breakers *circuit.Registry
	// Metrics may be nil.
	Metrics *metrics.Metrics

	UserAgent string
	Logger    logging.Logger

	// Plugins run in order against the pipeline before it freezes.
	Plugins []Plugin

	// DisableTracing skips the per-attempt span middleware.
	DisableTracing bool
}

// Client executes operations against one service. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	engine   transport.Engine
	creds    credentials.Provider
	signer   *signer.Signer
	strategy *retry.Strategy
	breakers *circuit.Registry
	metrics  *metrics.Metrics
	pipeline *execution.Pipeline
	log      logging.Logger

	region  string
	service string
}

func NewClient(o ClientOptions) (*Client, error) {
	if o.Engine == nil {
		return nil, errors.New("client requires a transport engine")
	}
	if o.Retry == nil {
		o.Retry = retry.NewStandardStrategy(retry.StandardStrategyOptions{})
	}
	if o.Logger == nil {
		o.Logger = logging.WithComponent("client")
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}

	c := &Client{
		engine:   o.Engine,
		creds:    o.Credentials,
		signer:   signer.New(),
		strategy: o.Retry,
		breakers: o.Breakers,
		metrics:  o.Metrics,
		pipeline: execution.NewPipeline(),
		log:      o.Logger,
		region:   o.Region,
		service:  o.Service,
	}

	c.pipeline.Intercept(execution.PhaseMutate, execution.After, userAgentMiddleware(o.UserAgent))
	c.pipeline.Intercept(execution.PhaseMutate, execution.After, invocationIDMiddleware())
	if !o.DisableTracing {
		c.pipeline.Intercept(execution.PhaseTransmit, execution.Before, spanMiddleware())
	}
	c.pipeline.Intercept(execution.PhaseSign, execution.After, c.signMiddleware())
	c.pipeline.Intercept(execution.PhaseFinalize, execution.After, completeResponseMiddleware())

	for _, plugin := range o.Plugins {
		plugin.Register(c.pipeline)
	}
	c.pipeline.Freeze()

	return c, nil
}

func (c *Client) Region() string { return c.region }

func (c *Client) Service() string { return c.service }

// signMiddleware is the only resident of the Sign phase. Operations without
// a signing config pass through unsigned.
func (c *Client) signMiddleware() execution.Middleware {
	return execution.MiddlewareFunc{
		ID: "sigv4",
		Fn: func(ctx context.Context, ec *execution.Context, subject interface{}, next execution.Handler) (interface{}, error) {
			cfg, ok := execution.Get(ec, AttrSigningConfig)
			if !ok || cfg == nil {
				return next(ctx, subject)
			}
			req, ok := subject.(*transport.RequestBuilder)
			if !ok {
				return next(ctx, subject)
			}
			if c.creds == nil {
				return nil, &OperationError{Kind: ErrSigning, Err: credentials.ErrNoCredentials}
			}
			creds, err := c.creds.Retrieve(ctx)
			if err != nil {
				return nil, &OperationError{Kind: ErrSigning, Err: err}
			}
			attemptCfg := *cfg
			attemptCfg.Credentials = creds
			if attemptCfg.SigningTime.IsZero() {
				attemptCfg.SigningTime = time.Now()
			}
			if attemptCfg.Region == "" {
				attemptCfg.Region = c.region
			}
			if attemptCfg.Service == "" {
				attemptCfg.Service = c.service
			}
			if attemptCfg.Logger == nil {
				attemptCfg.Logger = c.log
			}
			if _, err := c.signer.SignRequest(ctx, &attemptCfg, req); err != nil {
				return nil, &OperationError{Kind: ErrSigning, Err: err}
			}
			return next(ctx, subject)
		},
	}
}
