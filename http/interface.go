package http

import (
	"context"
	nethttp "net/http"
	"time"
)

// Client defines the HTTP client interface. Every call performs exactly one
// network exchange; a non-2xx status is returned as a Response, not an error.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Head(ctx context.Context, req *Request) (*Response, error)
	Options(ctx context.Context, req *Request) (*Response, error)
	Trace(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
	// DoObject translates obj into parameters and sends them with method.
	DoObject(ctx context.Context, method, url string, headers map[string]string, obj any) (*Response, error)
}

// Request represents an outbound HTTP request.
//
// Params are sent in the query string for GET, HEAD, OPTIONS, DELETE and
// TRACE, and as a form-encoded body for POST, PUT and PATCH. Body is sent
// verbatim only by the body-carrying methods, and only when Params is empty.
type Request struct {
	URL     string
	Headers map[string]string
	Params  map[string]string
	Body    *string
	Auth    *BasicAuth
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response, before its body is read
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the client configuration assembled by Builder
type Config struct {
	Timeout              time.Duration
	UserAgent            string
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// TraceHeader carries the request trace ID; empty disables it
	TraceHeader string
	// W3CTraceContext injects a traceparent header on every request
	W3CTraceContext bool
}
