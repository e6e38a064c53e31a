/*
Package tracing gives every HTTP request an id and a completion log line.

The id comes from the inbound X-Request-ID header when it is a sane token,
otherwise a fresh req_<ULID>. It is stored in the request context, echoed
back in the response header, and attached to the span the Tracer logs once
the handler returns.

# Usage

	tracer := tracing.New(logger.Named("http"))
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// inside a handler
	reqID := tracing.RequestIDFrom(c.Request.Context())

Spans are logged by a collector goroutine through a buffered channel
(1000 spans); when it is full, spans are dropped with a warning rather than
slowing requests.
*/
package tracing
