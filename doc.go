/*
Package smithkit is the core runtime for Smithy-generated service clients:
the machinery that turns a strongly-typed operation invocation into a
signed, serialized HTTP exchange and a deserialized, possibly-retried
response.

Generated bindings sit on top of four building blocks:

  - an operation execution pipeline with fixed phases (Initialize,
    Serialize, Mutate, Sign, Transmit, Deserialize, Finalize), each an
    ordered middleware list frozen at client construction,
  - the SigV4/SigV4a request signer, including pre-signed URLs and the
    chunked and event-stream variants,
  - a retry strategy with a costed token bucket, exponential backoff with
    jitter, and an optional adaptive client-side rate limiter,
  - streaming byte channels, a token-oriented JSON codec, and the
    encoding-aware URL and header types the signer depends on.

The HTTP transport, credential acquisition, and telemetry sinks are
injected; the runtime only defines their interfaces.

A minimal client:

	client, err := smithkit.NewClient(smithkit.ClientOptions{
		Engine:      engine,
		Credentials: credentials.StaticProvider{Value: creds},
		Region:      "us-east-1",
		Service:     "service",
	})
	if err != nil {
		...
	}
	out, err := smithkit.Execute(ctx, client, getThingOperation, &GetThingInput{ID: "x"})
*/
package smithkit
