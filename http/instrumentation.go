package http

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/reqbricks/reqbricks/logger"
)

const (
	instrumentationName = "github.com/reqbricks/reqbricks/http"

	// Metric names following OpenTelemetry HTTP client semantic conventions
	metricHTTPRequestDuration = "http.client.request.duration" // Histogram in seconds
	metricHTTPActiveRequests  = "http.client.active_requests"  // UpDownCounter

	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrServerAddress      = "server.address"
	attrURLPath            = "url.path"
	attrErrorType          = "error.type"
)

// HTTP request duration histogram buckets per OTel semantic conventions
var httpDurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

// instruments holds the tracer and metric instruments of one client.
// Metric instruments are nil when their creation failed.
type instruments struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider, log logger.Logger) *instruments {
	meter := mp.Meter(instrumentationName)
	inst := &instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	inst.duration, err = meter.Float64Histogram(
		metricHTTPRequestDuration,
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(httpDurationBuckets...),
	)
	logMetricError(log, metricHTTPRequestDuration, err)

	inst.active, err = meter.Int64UpDownCounter(
		metricHTTPActiveRequests,
		metric.WithDescription("Number of in-flight HTTP client requests"),
		metric.WithUnit("{request}"),
	)
	logMetricError(log, metricHTTPActiveRequests, err)

	return inst
}

// logMetricError is best effort: metrics failures never break the client.
func logMetricError(log logger.Logger, name string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to initialize HTTP client metric")
	}
}

// exchange tracks the telemetry of a single invocation.
type exchange struct {
	inst  *instruments
	span  trace.Span
	attrs []attribute.KeyValue
	start time.Time
}

func (i *instruments) begin(ctx context.Context, method, rawURL string) (context.Context, *exchange) {
	attrs := []attribute.KeyValue{attribute.String(attrHTTPRequestMethod, method)}
	spanAttrs := attrs
	if u, err := url.Parse(rawURL); err == nil {
		attrs = append(attrs, attribute.String(attrServerAddress, u.Hostname()))
		spanAttrs = append([]attribute.KeyValue{attribute.String(attrURLPath, u.Path)}, attrs...)
	}

	ctx, span := i.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(spanAttrs...),
	)

	if i.active != nil {
		i.active.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	return ctx, &exchange{inst: i, span: span, attrs: attrs, start: time.Now()}
}

// end closes the span and records duration. Exactly one of resp and err is set.
func (e *exchange) end(ctx context.Context, resp *Response, err error) {
	defer e.span.End()

	if e.inst.active != nil {
		e.inst.active.Add(ctx, -1, metric.WithAttributes(e.attrs...))
	}

	attrs := append([]attribute.KeyValue{}, e.attrs...)
	switch {
	case err != nil:
		errType := string(ExecutionError)
		if se, ok := err.(*ServiceError); ok {
			errType = se.Op
		}
		attrs = append(attrs, attribute.String(attrErrorType, errType))
		e.span.RecordError(err)
		e.span.SetStatus(codes.Error, err.Error())
	case resp != nil:
		attrs = append(attrs, attribute.Int(attrHTTPResponseStatus, resp.StatusCode))
		if resp.StatusCode >= 400 {
			attrs = append(attrs, attribute.String(attrErrorType, fmt.Sprint(resp.StatusCode)))
			e.span.SetStatus(codes.Error, resp.StatusMessage)
		}
	}
	e.span.SetAttributes(attrs[len(e.attrs):]...)

	if e.inst.duration != nil {
		e.inst.duration.Record(ctx, time.Since(e.start).Seconds(), metric.WithAttributes(attrs...))
	}
}
