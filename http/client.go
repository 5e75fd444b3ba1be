package http

import (
	"context"
	"fmt"
	"maps"
	nethttp "net/http"
	"reflect"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/reqbricks/reqbricks/internal/reflection"
	"github.com/reqbricks/reqbricks/logger"
	"github.com/reqbricks/reqbricks/request"
)

const (
	// DefaultTimeout is the default request timeout duration
	DefaultTimeout = 30 * time.Second

	headerUserAgent = "User-Agent"
)

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	translator           *request.Translator
	propagator           propagation.TextMapPropagator
	instruments          *instruments
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewClient creates a new client with default configuration
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring the client
type Builder struct {
	config         *Config
	logger         logger.Logger
	translator     *request.Translator
	transport      nethttp.RoundTripper
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagator     propagation.TextMapPropagator
}

// NewBuilder creates a new client builder. A nil logger discards output.
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		config: &Config{
			Timeout:              DefaultTimeout,
			RequestInterceptors:  []RequestInterceptor{},
			ResponseInterceptors: []ResponseInterceptor{},
			DefaultHeaders:       make(map[string]string),
			TraceHeader:          HeaderXRequestID,
			W3CTraceContext:      true,
		},
		logger:     log,
		propagator: propagation.TraceContext{},
	}
}

// WithTimeout sets the overall exchange timeout; zero disables it
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithBasicAuth sets client-level basic authentication credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithUserAgent sets the User-Agent header sent unless a request overrides it
func (b *Builder) WithUserAgent(userAgent string) *Builder {
	b.config.UserAgent = userAgent
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithTraceHeader sets the header carrying the request trace ID; empty disables it
func (b *Builder) WithTraceHeader(name string) *Builder {
	b.config.TraceHeader = name
	return b
}

// WithW3CTraceContext toggles traceparent injection
func (b *Builder) WithW3CTraceContext(enabled bool) *Builder {
	b.config.W3CTraceContext = enabled
	return b
}

// WithTranslator sets the translator used by DoObject
func (b *Builder) WithTranslator(t *request.Translator) *Builder {
	b.translator = t
	return b
}

// WithTransport replaces the underlying round tripper
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithTracerProvider sets the tracer provider; the global one is used otherwise
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithMeterProvider sets the meter provider; the global one is used otherwise
func (b *Builder) WithMeterProvider(mp metric.MeterProvider) *Builder {
	b.meterProvider = mp
	return b
}

// WithPropagator replaces the W3C trace context propagator
func (b *Builder) WithPropagator(p propagation.TextMapPropagator) *Builder {
	if p != nil {
		b.propagator = p
	}
	return b
}

// Build creates the client with the configured options
func (b *Builder) Build() Client {
	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := b.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	translator := b.translator
	if translator == nil {
		translator = request.NewTranslator()
	}

	// The client owns a snapshot; later builder calls must not reach it.
	cfg := *b.config
	cfg.DefaultHeaders = maps.Clone(b.config.DefaultHeaders)
	cfg.RequestInterceptors = slices.Clone(b.config.RequestInterceptors)
	cfg.ResponseInterceptors = slices.Clone(b.config.ResponseInterceptors)

	return &client{
		httpClient: &nethttp.Client{
			Timeout:   cfg.Timeout,
			Transport: b.transport,
		},
		logger:               b.logger,
		config:               &cfg,
		translator:           translator,
		propagator:           b.propagator,
		instruments:          newInstruments(tp, mp, b.logger),
		requestInterceptors:  cfg.RequestInterceptors,
		responseInterceptors: cfg.ResponseInterceptors,
	}
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Head performs a HEAD request; the response never has a body
func (c *client) Head(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodHead, req)
}

// Options performs an OPTIONS request
func (c *client) Options(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodOptions, req)
}

// Trace performs a TRACE request
func (c *client) Trace(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodTrace, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// DoObject translates obj with the client's translator and sends the
// resulting parameters. Translation errors are returned unchanged.
func (c *client) DoObject(ctx context.Context, method, url string, headers map[string]string, obj any) (*Response, error) {
	params, err := c.translator.Translate(obj)
	if err != nil {
		c.logger.WithContext(ctx).Error().Err(err).Str("method", method).Str("url", url).Msg("Request object translation failed")
		return nil, err
	}
	return c.Do(ctx, method, &Request{URL: url, Headers: headers, Params: params})
}

// Do performs an HTTP request with the specified method. The exchange runs on
// a dedicated worker; the caller blocks until it completes.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if err := validateRequest(method, req); err != nil {
		return nil, err
	}

	ctx, ex := c.instruments.begin(ctx, method, req.URL)
	log := c.logger.WithContext(ctx)
	traceID := EnsureTraceID(ctx)
	enc := encoderFor(method)
	c.logRequest(log, method, req, traceID)

	var resp *Response
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = c.serviceError(OpPanic, method, req, enc, fmt.Errorf("panic: %v", rec))
			}
		}()
		resp, err = c.execute(gctx, method, req, enc, traceID)
		return err
	})
	err := g.Wait()

	ex.end(ctx, resp, err)
	if err != nil {
		c.logFailure(log, method, req, traceID, err)
		return nil, err
	}
	c.logResponse(log, resp, traceID)
	return resp, nil
}

// execute performs the single exchange: build, intercept, send, intercept, read.
func (c *client) execute(ctx context.Context, method string, req *Request, enc requestEncoder, traceID string) (*Response, error) {
	start := time.Now()

	httpReq, err := enc.encode(ctx, method, req)
	if err != nil {
		return nil, c.serviceError(OpBuild, method, req, enc, err)
	}

	c.applyHeaders(httpReq, req)
	c.applyAuth(httpReq, req)
	c.applyTrace(ctx, httpReq, traceID)

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		return nil, c.serviceError(OpRequestInterceptor, method, req, enc, err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.serviceError(OpTransport, method, req, enc, err)
	}
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, c.serviceError(OpResponseInterceptor, method, req, enc, err)
	}

	resp, err := newResponse(method, httpResp, start)
	if err != nil {
		return nil, c.serviceError(OpReadBody, method, req, enc, err)
	}
	return resp, nil
}

func (c *client) serviceError(op, method string, req *Request, enc requestEncoder, cause error) *ServiceError {
	return &ServiceError{
		Op:     op,
		Method: method,
		URL:    req.URL,
		Target: reflection.GetTypeNameShort(reflect.TypeOf(enc)),
		Cause:  cause,
	}
}

// applyHeaders applies headers to the HTTP request
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request) {
	if c.config.UserAgent != "" {
		httpReq.Header.Set(headerUserAgent, c.config.UserAgent)
	}

	// Apply default headers first
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	// Apply request-specific headers (these override defaults)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
}

// applyAuth applies authentication to the HTTP request
func (c *client) applyAuth(httpReq *nethttp.Request, req *Request) {
	// Request-specific auth takes precedence
	auth := req.Auth
	if auth == nil {
		auth = c.config.BasicAuth
	}

	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}
}

// applyTrace sets the trace ID header and the W3C traceparent unless the
// caller already provided them.
func (c *client) applyTrace(ctx context.Context, httpReq *nethttp.Request, traceID string) {
	if name := c.config.TraceHeader; name != "" && httpReq.Header.Get(name) == "" {
		httpReq.Header.Set(name, traceID)
	}

	if !c.config.W3CTraceContext || httpReq.Header.Get(HeaderTraceParent) != "" {
		return
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	if httpReq.Header.Get(HeaderTraceParent) == "" {
		httpReq.Header.Set(HeaderTraceParent, GenerateTraceParent())
	}
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}

// logRequest logs the outgoing request; parameters and headers only at debug level
func (c *client) logRequest(log logger.Logger, method string, req *Request, traceID string) {
	log.Info().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", req.URL).
		Str("request_id", traceID).
		Msg("HTTP client request")

	event := log.Debug().Str("request_id", traceID)
	if len(req.Params) > 0 {
		event = event.Interface("params", req.Params)
	}
	if len(req.Headers) > 0 {
		event = event.Interface("headers", req.Headers)
	}
	if req.Body != nil {
		event = event.Int("body_length", len(*req.Body))
	}
	event.Msg("HTTP client request payload")
}

// logResponse logs the incoming response
func (c *client) logResponse(log logger.Logger, resp *Response, traceID string) {
	log.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Elapsed).
		Bool("success", resp.IsSuccess()).
		Str("request_id", traceID).
		Msg("HTTP client response")
}

// logFailure logs an exchange that produced no response
func (c *client) logFailure(log logger.Logger, method string, req *Request, traceID string, err error) {
	event := log.Error().
		Err(err).
		Str("method", method).
		Str("url", req.URL).
		Str("request_id", traceID)
	if se, ok := err.(*ServiceError); ok {
		event = event.Str("op", se.Op).Str("target", se.Target)
	}
	event.Msg("HTTP client request failed")
}
