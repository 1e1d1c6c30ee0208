package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/smithkit/smithkit/transport"
)

// ErrUnreplayableStream reports a streaming body that cannot be rewound for
// hashing. Fatal: the request cannot be signed.
var ErrUnreplayableStream = errors.New("streaming body must be replayable to compute the payload hash")

// resolvePayloadHash produces the hex payload hash per the hash
// specification, hashing the body when no literal was supplied.
func resolvePayloadHash(cfg *SigningConfig, body transport.Body) (string, error) {
	if cfg.HashSpecification.isLiteral() {
		return cfg.HashSpecification.Literal, nil
	}
	return hashBody(body)
}

func hashBody(body transport.Body) (string, error) {
	switch b := body.(type) {
	case nil, transport.EmptyBody:
		return emptySHA256, nil
	case *transport.BytesBody:
		sum := sha256.Sum256(b.Bytes())
		return hex.EncodeToString(sum[:]), nil
	default:
		return hashStream(body)
	}
}

// hashStream drains a replayable stream through an incremental SHA-256 in
// fixed-size chunks, then resets the stream for the actual transmission.
func hashStream(body transport.Body) (string, error) {
	if !body.Replayable() {
		return "", ErrUnreplayableStream
	}
	h := sha256.New()
	buf := make([]byte, streamHashChunkSize)
	r := body.Reader()
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hashing streaming body: %w", err)
		}
	}
	if err := body.Reset(); err != nil {
		return "", fmt.Errorf("resetting streaming body after hashing: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
