package credentials

import (
	"context"
	"errors"
	"time"
)

// Credentials is the AWS credentials value for individual credential fields.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Source names where the credentials came from.
	Source string

	// CanExpire states if the credentials can expire.
	CanExpire bool

	// Expires is ignored unless CanExpire is set.
	Expires time.Time
}

var ErrNoCredentials = errors.New("no credentials available")

// Expired reports whether the credentials are past their expiry at now.
func (c Credentials) Expired(now time.Time) bool {
	return c.CanExpire && !now.Before(c.Expires)
}

func (c Credentials) HasKeys() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Provider yields credentials for signing. Retrieve may suspend on ctx and
// may return expiring credentials.
type Provider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Credentials, error)

func (f ProviderFunc) Retrieve(ctx context.Context) (Credentials, error) { return f(ctx) }

// StaticProvider returns a fixed value on every call.
type StaticProvider struct {
	Value Credentials
}

func (p StaticProvider) Retrieve(context.Context) (Credentials, error) {
	if !p.Value.HasKeys() {
		return Credentials{}, ErrNoCredentials
	}
	v := p.Value
	v.Source = "static"
	return v, nil
}
