package signer

import (
	"time"

	"github.com/smithkit/smithkit/credentials"
	"github.com/smithkit/smithkit/logging"
)

type Algorithm int

const (
	SigV4 Algorithm = iota
	SigV4Asymmetric
)

func (a Algorithm) Name() string {
	if a == SigV4Asymmetric {
		return asymmetricAlgorithm
	}
	return signingAlgorithm
}

// SignatureType selects the carrier and the string-to-sign flavor.
type SignatureType int

const (
	// SignHeaders places the signature in the Authorization header.
	SignHeaders SignatureType = iota
	// SignQueryParams produces a pre-signed URL.
	SignQueryParams
	// SignChunk signs one chunk of an S3-style streaming upload.
	SignChunk
	// SignEvent signs one event-stream frame.
	SignEvent
	// SignTrailer signs the trailing headers of a chunked upload.
	SignTrailer
)

type SignedBodyHeader int

const (
	// NoBodyHeader leaves the payload hash out of the signed headers.
	NoBodyHeader SignedBodyHeader = iota
	// ContentSha256Header adds X-Amz-Content-Sha256.
	ContentSha256Header
)

// HashSpecification instructs the canonicalizer to either compute the
// payload hash or use a pre-supplied literal. UnsignedPayload and the
// streaming sentinel values are literals.
type HashSpecification struct {
	Literal string
}

func (h HashSpecification) isLiteral() bool { return h.Literal != "" }

// UnsignedPayload skips payload hashing.
var UnsignedPayload = HashSpecification{Literal: "UNSIGNED-PAYLOAD"}

// SigningConfig is the immutable per-call signing instruction set.
type SigningConfig struct {
	Algorithm     Algorithm
	Region        string
	Service       string
	SigningTime   time.Time
	Credentials   credentials.Credentials
	SignatureType SignatureType

	SignedBodyHeader  SignedBodyHeader
	HashSpecification HashSpecification

	// NormalizePath removes redundant "." and ".." segments before
	// canonicalization.
	NormalizePath bool
	// UseDoubleURIEncode applies the canonical path encoding twice;
	// required by every service except S3.
	UseDoubleURIEncode bool
	// ExpiresAfter bounds a pre-signed URL's validity.
	ExpiresAfter time.Duration
	// OmitSessionToken defers X-Amz-Security-Token until after signing.
	OmitSessionToken bool
	// HeaderFilter excludes additional headers from signing; return false
	// to exclude. Applies on top of the built-in deny list.
	HeaderFilter func(name string) bool

	Logger logging.Logger
}

func (c *SigningConfig) logger() logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard()
}
