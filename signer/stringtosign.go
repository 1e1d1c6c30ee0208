package signer

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// buildStringToSign derives the signable digest text from a canonical
// request.
func buildStringToSign(cfg *SigningConfig, t *SigningTime, canonicalRequest string) string {
	return strings.Join([]string{
		cfg.Algorithm.Name(),
		t.Format(),
		buildCredentialScope(t, cfg),
		hashHex([]byte(canonicalRequest)),
	}, "\n")
}

// buildChunkStringToSign chains one S3 streaming-upload chunk onto the
// previous signature.
func buildChunkStringToSign(cfg *SigningConfig, t *SigningTime, previousSignature string, chunk []byte) string {
	return strings.Join([]string{
		chunkAlgorithm,
		t.Format(),
		buildCredentialScope(t, cfg),
		previousSignature,
		emptySHA256,
		hashHex(chunk),
	}, "\n")
}

// buildEventStringToSign chains one event-stream frame onto the previous
// signature. The non-signature headers hash covers the frame's :date header
// in event-stream wire encoding.
func buildEventStringToSign(cfg *SigningConfig, t *SigningTime, previousSignature string, payload []byte) string {
	return strings.Join([]string{
		eventAlgorithm,
		t.Format(),
		buildCredentialScope(t, cfg),
		previousSignature,
		nonSignatureHeadersHash(t),
		hashHex(payload),
	}, "\n")
}

// buildTrailerStringToSign signs the trailing headers of a chunked upload.
// trailer is the canonical rendering of the trailing header block.
func buildTrailerStringToSign(cfg *SigningConfig, t *SigningTime, previousSignature string, trailer []byte) string {
	return strings.Join([]string{
		trailerAlgorithm,
		t.Format(),
		buildCredentialScope(t, cfg),
		previousSignature,
		hashHex(trailer),
	}, "\n")
}

// nonSignatureHeadersHash hashes the :date header encoded in the
// event-stream wire format: name length, name, timestamp type tag, and the
// epoch-millisecond value big-endian.
func nonSignatureHeadersHash(t *SigningTime) string {
	return hashHex(encodeDateHeader(t))
}

const eventStreamTimestampType = 8

func encodeDateHeader(t *SigningTime) []byte {
	const name = ":date"
	buf := make([]byte, 0, 1+len(name)+1+8)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, eventStreamTimestampType)
	buf = binary.BigEndian.AppendUint64(buf, uint64(t.UnixMilli()))
	return buf
}
