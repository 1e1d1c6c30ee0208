package transport

import (
	"errors"

	"github.com/smithkit/smithkit/uri"
)

var ErrBodyNotReplayable = errors.New("request body is not replayable")

// RequestBuilder accumulates an outgoing request. It stays mutable through
// the pipeline; after the finalize phase the engine treats it as immutable.
// Clone produces the per-attempt copy that retries and signing mutate.
type RequestBuilder struct {
	Method  string
	URL     *uri.URL
	Headers *Headers
	Body    Body
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		Method:  "GET",
		Headers: NewHeaders(),
		Body:    EmptyBody{},
	}
}

// Clone deep-copies method, URL and headers. The body is shared: bodies are
// replayed through Reset rather than copied.
func (r *RequestBuilder) Clone() *RequestBuilder {
	c := &RequestBuilder{
		Method: r.Method,
		Body:   r.Body,
	}
	if r.URL != nil {
		c.URL = r.URL.Clone()
	}
	if r.Headers != nil {
		c.Headers = r.Headers.Clone()
	} else {
		c.Headers = NewHeaders()
	}
	return c
}

// HostHeaderValue is the value the Host header carries for this request.
func (r *RequestBuilder) HostHeaderValue() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.HostPort()
}
