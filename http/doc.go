// Package http provides a small, composable HTTP client with request and
// response interceptors, default headers, basic auth and trace propagation.
//
// Parameter encoding
//   - GET, HEAD, OPTIONS, DELETE and TRACE merge Params into the URL query.
//     Existing query entries are kept unless a parameter of the same name replaces them.
//   - POST, PUT and PATCH send Params as an application/x-www-form-urlencoded
//     body in UTF-8. Without Params a non-nil Body is sent verbatim.
//   - Body is ignored by the query-string methods.
//
// Execution
//   - Requests are validated before any I/O; failures are validation ClientErrors.
//   - Each call performs exactly one exchange on its own worker goroutine, with
//     no retries. Redirects follow the net/http defaults.
//   - Every failure after validation is a *ServiceError naming the stage that failed.
//   - A non-2xx status is not an error: the populated Response is returned.
//
// Tracing
//   - An X-Request-ID header (configurable) carries the trace ID from the context,
//     or a new UUID.
//   - A W3C traceparent header is injected from the active span, or generated.
//   - Every call records a client span and the http.client.request.duration and
//     http.client.active_requests metrics.
package http
