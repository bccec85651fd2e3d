package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	metricSDK "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	traceSDK "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = 5 * time.Second

// Config holds telemetry configuration for a service
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
}

// Telemetry bundles the tracer and meter of a service. Instruments are
// created once per name and reused.
type Telemetry struct {
	serviceName string
	tracer      trace.Tracer
	meter       metric.Meter

	counters   sync.Map
	histograms sync.Map
}

// current is the instance installed by InitTelemetry. Code running outside an
// HTTP request (message handlers, scheduled jobs) records through it.
var current atomic.Pointer[Telemetry]

// NewTelemetry creates a telemetry instance bound to the global providers
func NewTelemetry(config Config) *Telemetry {
	return newTelemetry(config.ServiceName, otel.GetTracerProvider(), otel.GetMeterProvider())
}

func newTelemetry(serviceName string, tracerProvider trace.TracerProvider, meterProvider metric.MeterProvider) *Telemetry {
	return &Telemetry{
		serviceName: serviceName,
		tracer:      tracerProvider.Tracer(serviceName),
		meter:       meterProvider.Meter(serviceName),
	}
}

// InitTelemetry installs the global providers with a Prometheus reader and, when
// an endpoint is configured, OTLP trace and metric exporters.
func InitTelemetry(ctx context.Context, config Config) (*Telemetry, func(), error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build telemetry resource")
	}

	tracerProvider, err := newTracerProvider(ctx, res, config.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}

	meterProvider, err := newMeterProvider(ctx, res, config.OTLPEndpoint)
	if err != nil {
		shutdownProvider(tracerProvider.Shutdown)
		return nil, nil, err
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tel := newTelemetry(config.ServiceName, tracerProvider, meterProvider)
	current.Store(tel)

	shutdown := func() {
		current.CompareAndSwap(tel, nil)
		shutdownProvider(tracerProvider.Shutdown)
		shutdownProvider(meterProvider.Shutdown)
	}
	return tel, shutdown, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, otlpEndpoint string) (*traceSDK.TracerProvider, error) {
	opts := []traceSDK.TracerProviderOption{
		traceSDK.WithResource(res),
		traceSDK.WithSampler(traceSDK.ParentBased(traceSDK.AlwaysSample())),
	}

	if otlpEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(otlpEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp trace exporter")
		}
		opts = append(opts, traceSDK.WithBatcher(exporter))
	}

	return traceSDK.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, otlpEndpoint string) (*metricSDK.MeterProvider, error) {
	// Served on /metrics through the default Prometheus registry
	promExporter, err := prometheus.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create prometheus exporter")
	}

	opts := []metricSDK.Option{
		metricSDK.WithResource(res),
		metricSDK.WithReader(promExporter),
	}

	if otlpEndpoint != "" {
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(otlpEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp metric exporter")
		}
		opts = append(opts, metricSDK.WithReader(metricSDK.NewPeriodicReader(exporter,
			metricSDK.WithInterval(30*time.Second),
		)))
	}

	return metricSDK.NewMeterProvider(opts...), nil
}

func shutdownProvider(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = shutdown(ctx)
}

// StartSpan starts a span on the service tracer
func (t *Telemetry) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// ServiceName returns the reported service name
func (t *Telemetry) ServiceName() string {
	return t.serviceName
}

func (t *Telemetry) counter(name, description string) (metric.Int64Counter, error) {
	if c, ok := t.counters.Load(name); ok {
		return c.(metric.Int64Counter), nil
	}
	c, err := t.meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	actual, _ := t.counters.LoadOrStore(name, c)
	return actual.(metric.Int64Counter), nil
}

func (t *Telemetry) histogram(name, description string) (metric.Float64Histogram, error) {
	if h, ok := t.histograms.Load(name); ok {
		return h.(metric.Float64Histogram), nil
	}
	h, err := t.meter.Float64Histogram(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	actual, _ := t.histograms.LoadOrStore(name, h)
	return actual.(metric.Float64Histogram), nil
}

type contextKey string

const telemetryKey contextKey = "telemetry"

// WithTelemetry injects telemetry into context
func WithTelemetry(ctx context.Context, tel *Telemetry) context.Context {
	return context.WithValue(ctx, telemetryKey, tel)
}

// FromContext returns the telemetry carried by ctx or the installed one. It is
// nil when telemetry is disabled.
func FromContext(ctx context.Context) *Telemetry {
	if tel, ok := ctx.Value(telemetryKey).(*Telemetry); ok && tel != nil {
		return tel
	}
	return current.Load()
}

// StartSpan starts a span using the telemetry from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tel := FromContext(ctx); tel != nil {
		return tel.StartSpan(ctx, name, opts...)
	}
	return otel.Tracer("").Start(ctx, name, opts...)
}

// RecordCounter adds value to the named counter. Nothing is recorded without telemetry.
func RecordCounter(ctx context.Context, name, description string, value int64, attrs ...attribute.KeyValue) {
	tel := FromContext(ctx)
	if tel == nil {
		return
	}
	counter, err := tel.counter(name, description)
	if err != nil {
		return
	}
	attrs = append(attrs, attribute.String("service", tel.serviceName))
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// RecordHistogram records value on the named histogram
func RecordHistogram(ctx context.Context, name, description string, value float64, attrs ...attribute.KeyValue) {
	tel := FromContext(ctx)
	if tel == nil {
		return
	}
	histogram, err := tel.histogram(name, description)
	if err != nil {
		return
	}
	attrs = append(attrs, attribute.String("service", tel.serviceName))
	histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}
