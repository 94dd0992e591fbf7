package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duynhne/connectspark-service/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer          trace.Tracer
	detectedService string
)

// InitTracing installs the global tracer provider and W3C propagators.
// The caller shuts the returned provider down to flush pending spans.
//
// Example:
//
//	tp, err := middleware.InitTracing(cfg)
//	defer tp.Shutdown(context.Background())
func InitTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, errors.New("tracing is disabled (TRACING_ENABLED=false)")
	}
	if cfg.Tracing.Endpoint == "" {
		return nil, errors.New("OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", cfg.Tracing.SampleRate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg.Tracing.Endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	id := detectServiceIdentity(cfg.Tracing.ServiceName)
	// A partial detection failure still yields a usable fallback resource.
	res, _ := newResource(ctx, id, cfg.Service.Version, cfg.Service.Env)
	detectedService = id.Name

	// Sampling follows the caller's decision when a parent span exists so a
	// request traced by the frontend stays whole.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithExportTimeout(30*time.Second),
			sdktrace.WithMaxExportBatchSize(cfg.Tracing.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = otel.Tracer(detectedService)

	return tp, nil
}

// exporterOptions accepts either host:port (plain HTTP inside the cluster)
// or a full URL, whose scheme decides TLS.
func exporterOptions(endpoint string) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithCompression(otlptracehttp.GzipCompression)}
	if strings.Contains(endpoint, "://") {
		return append(opts, otlptracehttp.WithEndpointURL(endpoint))
	}
	return append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
}

// isInfrastructurePath reports health check and scrape endpoints, which are neither
// traced nor counted in request metrics.
func isInfrastructurePath(path string) bool {
	for _, skip := range []string{
		"/health", "/healthz", "/ready", "/readyz", "/livez", "/liveness", "/readiness",
		"/metrics", "/favicon.ico",
	} {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// TracingMiddleware wraps otelgin and skips infrastructure endpoints.
// It must be registered before the other middleware.
func TracingMiddleware() gin.HandlerFunc {
	serviceName := detectedService
	if serviceName == "" {
		serviceName = unknownService
	}

	otelMiddleware := otelgin.Middleware(
		serviceName,
		otelgin.WithTracerProvider(otel.GetTracerProvider()),
	)

	return func(c *gin.Context) {
		if isInfrastructurePath(c.Request.URL.Path) {
			c.Next()
			return
		}
		otelMiddleware(c)
	}
}

func getTracer() trace.Tracer {
	if tracer == nil {
		serviceName := detectedService
		if serviceName == "" {
			serviceName = unknownService
		}
		tracer = otel.Tracer(serviceName)
	}
	return tracer
}

// StartSpan starts a new span with the given name
//
// Usage:
//
//	ctx, span := middleware.StartSpan(ctx, "onboarding.resolve")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	//nolint:spancheck // span is returned to caller who is responsible for calling span.End()
	return getTracer().Start(ctx, name, opts...)
}

// AddSpanAttributes adds attributes to the current span if it's recording
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// AddSpanEvent adds an event to the current span if it's recording
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordError records err on the current span and marks it failed
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
