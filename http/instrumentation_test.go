package http

import (
	"context"
	nethttp "net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/reqbricks/reqbricks/internal/testutil"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
}

func newTelemetry(t *testing.T) *telemetry {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	tel := &telemetry{
		spans:  spans,
		reader: reader,
		tp:     sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		mp:     sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	t.Cleanup(func() {
		_ = tel.tp.Shutdown(context.Background())
		_ = tel.mp.Shutdown(context.Background())
	})
	return tel
}

func (tel *telemetry) builder() *Builder {
	return newTestClient().WithTracerProvider(tel.tp).WithMeterProvider(tel.mp)
}

func (tel *telemetry) collect(t *testing.T) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tel.reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestClientSpan(t *testing.T) {
	server, seen := newEchoServer(t, nethttp.StatusOK)
	tel := newTelemetry(t)

	_, err := tel.builder().Build().Get(context.Background(), &Request{URL: server.URL + "/items"})
	require.NoError(t, err)

	ended := tel.spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]

	assert.Equal(t, "HTTP GET", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.NotEqual(t, codes.Error, span.Status().Code)

	v, ok := spanAttr(span, attrHTTPRequestMethod)
	require.True(t, ok)
	assert.Equal(t, nethttp.MethodGet, v.AsString())
	v, ok = spanAttr(span, attrURLPath)
	require.True(t, ok)
	assert.Equal(t, "/items", v.AsString())
	v, ok = spanAttr(span, attrHTTPResponseStatus)
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())

	traceParent := seen.snapshot().headers.Get(HeaderTraceParent)
	sc := span.SpanContext()
	assert.Equal(t, "00-"+sc.TraceID().String()+"-"+sc.SpanID().String()+"-01", traceParent)
}

func TestClientSpanErrorStatus(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		server, _ := newEchoServer(t, nethttp.StatusInternalServerError)
		tel := newTelemetry(t)

		_, err := tel.builder().Build().Get(context.Background(), &Request{URL: server.URL})
		require.NoError(t, err)

		ended := tel.spans.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		assert.Equal(t, "Internal Server Error", ended[0].Status().Description)
	})

	t.Run("transport failure", func(t *testing.T) {
		tel := newTelemetry(t)

		_, err := tel.builder().Build().Post(context.Background(), &Request{URL: testutil.TestUnreachableURL})
		require.Error(t, err)

		ended := tel.spans.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, "HTTP POST", ended[0].Name())
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		v, ok := spanAttr(ended[0], attrErrorType)
		require.True(t, ok)
		assert.Equal(t, OpTransport, v.AsString())
		assert.NotEmpty(t, ended[0].Events(), "error is recorded as a span event")
	})

	t.Run("validation failure starts no span", func(t *testing.T) {
		tel := newTelemetry(t)

		_, err := tel.builder().Build().Get(context.Background(), &Request{})
		require.Error(t, err)
		assert.Empty(t, tel.spans.Ended())
	})
}

func TestClientSpanHasParent(t *testing.T) {
	server, _ := newEchoServer(t, nethttp.StatusOK)
	tel := newTelemetry(t)

	ctx, parent := tel.tp.Tracer("test").Start(context.Background(), "parent")
	_, err := tel.builder().Build().Get(ctx, &Request{URL: server.URL})
	require.NoError(t, err)
	parent.End()

	var child sdktrace.ReadOnlySpan
	for _, s := range tel.spans.Ended() {
		if strings.HasPrefix(s.Name(), "HTTP ") {
			child = s
		}
	}
	require.NotNil(t, child)
	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
}

func TestClientMetrics(t *testing.T) {
	server, _ := newEchoServer(t, nethttp.StatusOK)
	tel := newTelemetry(t)
	client := tel.builder().Build()

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), &Request{URL: server.URL})
		require.NoError(t, err)
	}

	metrics := tel.collect(t)

	duration, ok := metrics[metricHTTPRequestDuration]
	require.True(t, ok)
	assert.Equal(t, "s", duration.Unit)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(3), hist.DataPoints[0].Count)
	assert.Equal(t, httpDurationBuckets, hist.DataPoints[0].Bounds)

	status, ok := hist.DataPoints[0].Attributes.Value(attribute.Key(attrHTTPResponseStatus))
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())

	active, ok := metrics[metricHTTPActiveRequests]
	require.True(t, ok)
	sum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Zero(t, sum.DataPoints[0].Value, "no request left in flight")
}

func TestClientMetricsOnFailure(t *testing.T) {
	tel := newTelemetry(t)

	_, err := tel.builder().Build().Get(context.Background(), &Request{URL: testutil.TestUnreachableURL})
	require.Error(t, err)

	hist, ok := tel.collect(t)[metricHTTPRequestDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)

	errType, ok := hist.DataPoints[0].Attributes.Value(attribute.Key(attrErrorType))
	require.True(t, ok)
	assert.Equal(t, OpTransport, errType.AsString())
	_, ok = hist.DataPoints[0].Attributes.Value(attribute.Key(attrHTTPResponseStatus))
	assert.False(t, ok)
}
