package signer

const (
	authorizationHeader = "Authorization"

	amzAlgorithmKey     = "X-Amz-Algorithm"
	amzCredentialKey    = "X-Amz-Credential"
	amzDateKey          = "X-Amz-Date"
	amzExpiresKey       = "X-Amz-Expires"
	amzSecurityTokenKey = "X-Amz-Security-Token"
	amzSignedHeadersKey = "X-Amz-SignedHeaders"
	amzSignatureKey     = "X-Amz-Signature"
	amzContentSha256Key = "X-Amz-Content-Sha256"
	amzRegionSetKey     = "X-Amz-Region-Set"

	signingAlgorithm     = "AWS4-HMAC-SHA256"
	asymmetricAlgorithm  = "AWS4-ECDSA-P256-SHA256"
	chunkAlgorithm       = "AWS4-HMAC-SHA256-PAYLOAD"
	eventAlgorithm       = "AWS4-HMAC-SHA256-EVENTS"
	trailerAlgorithm     = "AWS4-HMAC-SHA256-TRAILER"

	// TimeFormat is used in the X-Amz-Date header or query parameter.
	timeFormat = "20060102T150405Z"
	// ShortTimeFormat appears in the credential scope.
	shortTimeFormat = "20060102"

	// emptySHA256 is the hex encoded SHA-256 of the empty string.
	emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	scopeSuffix = "aws4_request"

	// streamHashChunkSize is how much of a replayable stream is read per
	// hashing step.
	streamHashChunkSize = 16 * 1024
)
