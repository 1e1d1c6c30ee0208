package smithkit

import (
	"github.com/smithkit/smithkit/credentials"
	"github.com/smithkit/smithkit/execution"
	"github.com/smithkit/smithkit/signer"
	"github.com/smithkit/smithkit/transport"
	"github.com/smithkit/smithkit/uri"
)

// Well-known execution context attributes. Components communicate through
// these instead of widening every middleware signature.
var (
	// AttrOperationName is set before the pipeline starts.
	AttrOperationName = execution.NewKey[string]("operation.name")
	// AttrEndpoint is the resolved endpoint the serializer targets.
	AttrEndpoint = execution.NewKey[*uri.URL]("operation.endpoint")
	// AttrCredentialsProvider supplies signing credentials.
	AttrCredentialsProvider = execution.NewKey[credentials.Provider]("auth.credentials-provider")
	// AttrSigningConfig parameterizes the sign phase for this invocation.
	AttrSigningConfig = execution.NewKey[*signer.SigningConfig]("auth.signing-config")
	// AttrExpectedStatus is the success status the deserializer accepts.
	AttrExpectedStatus = execution.NewKey[int]("http.expected-status")
	// AttrInvocationID is the per-invocation id stamped on every attempt.
	AttrInvocationID = execution.NewKey[string]("operation.invocation-id")
	// AttrAttempt is the current 1-based attempt number.
	AttrAttempt = execution.NewKey[int]("operation.attempt")
	// AttrResponse carries the transmit result for late phases.
	AttrResponse = execution.NewKey[*transport.Response]("http.response")
	// AttrRequestID is the service-assigned request id, once known.
	AttrRequestID = execution.NewKey[string]("http.request-id")
)
