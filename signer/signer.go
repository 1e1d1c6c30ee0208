// Package signer applies AWS SigV4 and SigV4a signatures to outgoing
// requests: canonicalization, signing key derivation, and mutation of the
// carrier (headers or query parameters for pre-signed URLs), plus the
// chunked and event-stream variants.
package signer

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/smithkit/smithkit/transport"
)

// Signer is stateless apart from its two key caches and is safe for
// concurrent use.
type Signer struct {
	keyDeriver  *SigningKeyDeriver
	asymDeriver *asymmetricKeyDeriver
}

func New() *Signer {
	return &Signer{
		keyDeriver:  NewSigningKeyDeriver(),
		asymDeriver: newAsymmetricKeyDeriver(),
	}
}

// Result reports one completed signing attempt.
type Result struct {
	// Signature is the lowercase hex signature that was applied.
	Signature string
	// SignedHeaders is the semicolon-joined signed header list.
	SignedHeaders string
	// PayloadHash is the hex payload hash that was signed.
	PayloadHash string
	// CanonicalRequest is kept for debug logging.
	CanonicalRequest string
	// StringToSign is kept for debug logging.
	StringToSign string
}

// SignRequest canonicalizes and signs req in place. For SignHeaders the
// Authorization header is set; for SignQueryParams the signature parameter
// is appended, yielding a pre-signed URL in req.URL.
func (s *Signer) SignRequest(ctx context.Context, cfg *SigningConfig, req *transport.RequestBuilder) (*Result, error) {
	t := NewSigningTime(cfg.SigningTime)

	canonical, err := canonicalize(cfg, &t, req)
	if err != nil {
		return nil, err
	}
	stringToSign := buildStringToSign(cfg, &t, canonical.String)

	signature, err := s.computeSignature(cfg, &t, stringToSign)
	if err != nil {
		return nil, err
	}

	mutate(cfg, &t, req, canonical, signature)

	cfg.logger().WithFields(map[string]interface{}{
		"service": cfg.Service,
		"region":  cfg.Region,
	}).Debugf("signed request: signed headers %s", canonical.SignedHeaders)

	return &Result{
		Signature:        signature,
		SignedHeaders:    canonical.SignedHeaders,
		PayloadHash:      canonical.PayloadHash,
		CanonicalRequest: canonical.String,
		StringToSign:     stringToSign,
	}, nil
}

// SignChunk signs one chunk of a streaming upload, chaining onto the
// previous signature, and returns the new signature.
func (s *Signer) SignChunk(ctx context.Context, cfg *SigningConfig, previousSignature string, chunk []byte) (string, error) {
	t := NewSigningTime(cfg.SigningTime)
	return s.computeSignature(cfg, &t, buildChunkStringToSign(cfg, &t, previousSignature, chunk))
}

// SignEvent signs one event-stream frame payload.
func (s *Signer) SignEvent(ctx context.Context, cfg *SigningConfig, previousSignature string, payload []byte) (string, error) {
	t := NewSigningTime(cfg.SigningTime)
	return s.computeSignature(cfg, &t, buildEventStringToSign(cfg, &t, previousSignature, payload))
}

// SignTrailer signs a trailing header block.
func (s *Signer) SignTrailer(ctx context.Context, cfg *SigningConfig, previousSignature string, trailer []byte) (string, error) {
	t := NewSigningTime(cfg.SigningTime)
	return s.computeSignature(cfg, &t, buildTrailerStringToSign(cfg, &t, previousSignature, trailer))
}

func (s *Signer) computeSignature(cfg *SigningConfig, t *SigningTime, stringToSign string) (string, error) {
	if cfg.Algorithm == SigV4Asymmetric {
		priv, err := s.asymDeriver.DeriveKey(cfg.Credentials)
		if err != nil {
			return "", err
		}
		sig, err := signECDSA(priv, stringToSign)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sig), nil
	}
	key := s.keyDeriver.DeriveKey(cfg.Credentials, cfg.Service, cfg.Region, *t)
	return hex.EncodeToString(hmacSHA256(key, []byte(stringToSign))), nil
}

// mutate applies the signature to the carrier and, when the session token
// was withheld from signing, appends it afterwards.
func mutate(cfg *SigningConfig, t *SigningTime, req *transport.RequestBuilder, canonical *CanonicalRequest, signature string) {
	if cfg.SignatureType == SignQueryParams {
		req.URL.Query.Set(amzSignatureKey, signature)
		if token := cfg.Credentials.SessionToken; token != "" && cfg.OmitSessionToken {
			req.URL.Query.Set(amzSecurityTokenKey, token)
		}
		return
	}

	credential := cfg.Credentials.AccessKeyID + "/" + buildCredentialScope(t, cfg)
	req.Headers.Set(authorizationHeader, buildAuthorizationHeader(cfg.Algorithm, credential, canonical.SignedHeaders, signature))
	if token := cfg.Credentials.SessionToken; token != "" && cfg.OmitSessionToken {
		req.Headers.Set(amzSecurityTokenKey, token)
	}
}

func buildAuthorizationHeader(algo Algorithm, credential, signedHeaders, signature string) string {
	const (
		credentialPrefix = "Credential="
		headersPrefix    = "SignedHeaders="
		signaturePrefix  = "Signature="
		commaSpace       = ", "
	)
	name := algo.Name()
	var parts strings.Builder
	parts.Grow(len(name) + 1 +
		len(credentialPrefix) + len(credential) + 2 +
		len(headersPrefix) + len(signedHeaders) + 2 +
		len(signaturePrefix) + len(signature))
	parts.WriteString(name)
	parts.WriteRune(' ')
	parts.WriteString(credentialPrefix)
	parts.WriteString(credential)
	parts.WriteString(commaSpace)
	parts.WriteString(headersPrefix)
	parts.WriteString(signedHeaders)
	parts.WriteString(commaSpace)
	parts.WriteString(signaturePrefix)
	parts.WriteString(signature)
	return parts.String()
}
