package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"shiftcal/internal/config"
	"shiftcal/pkg/contracts"
)

// MeterName is the instrumentation scope for tracers and meters
const MeterName = "shiftcal"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a configuration with metrics on and tracing off
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "shiftcal",
		ServiceVersion: contracts.Version,
		Environment:    "development",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}
}

// NewOTelConfig maps the telemetry section of the application config
func NewOTelConfig(cfg config.TelemetryConfig) *OTelConfig {
	out := DefaultOTelConfig()
	out.ServiceName = cfg.ServiceName
	out.Environment = cfg.Environment
	out.TraceExporter = cfg.TraceExporter
	if !cfg.MetricsEnabled {
		out.MetricExporter = "none"
	}
	return out
}

// InitializeOTel sets up tracing and metrics. Disabled signals fall back to
// no-op implementations so callers never deal with nil tracers or meters.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res := createResource(cfg)
	providers := &OTelProviders{Logger: logger}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
		providers.Logger.InfoContext(ctx, "Tracing initialized",
			slog.String("exporter", cfg.TraceExporter),
			slog.Float64("sample_ratio", cfg.SampleRatio))
	case "none", "":
		providers.Tracer = otel.GetTracerProvider().Tracer(MeterName)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// Each provider set gets its own registry so repeated initialization
		// never collides on collector registration.
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)
		providers.Logger.InfoContext(ctx, "Metrics initialized",
			slog.String("exporter", cfg.MetricExporter))
	case "none", "":
		providers.Meter = noop.NewMeterProvider().Meter(MeterName)
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}
	return nil
}

// ScanMetrics holds the instruments recorded by handlers and the shift service
type ScanMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Extraction metrics
	ProcessRequestsTotal metric.Int64Counter
	RecordsExtracted     metric.Int64Counter
	SheetsSkipped        metric.Int64Counter
	ScanDuration         metric.Float64Histogram
	DownloadBytes        metric.Int64Counter
	CalendarSyncEvents   metric.Int64Counter
}

// CreateScanMetrics registers the application instruments on meter
func CreateScanMetrics(meter metric.Meter) (*ScanMetrics, error) {
	m := &ScanMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.ProcessRequestsTotal, err = meter.Int64Counter(
		"shift_process_requests_total",
		metric.WithDescription("Roster processing requests by outcome"),
	); err != nil {
		return nil, err
	}
	if m.RecordsExtracted, err = meter.Int64Counter(
		"shift_records_extracted_total",
		metric.WithDescription("Shift records extracted from rosters"),
	); err != nil {
		return nil, err
	}
	if m.SheetsSkipped, err = meter.Int64Counter(
		"shift_sheets_skipped_total",
		metric.WithDescription("Sheets skipped because no date headers were found"),
	); err != nil {
		return nil, err
	}
	if m.ScanDuration, err = meter.Float64Histogram(
		"shift_scan_duration_seconds",
		metric.WithDescription("Time spent scanning a workbook"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.DownloadBytes, err = meter.Int64Counter(
		"shift_download_bytes_total",
		metric.WithDescription("Bytes of roster workbooks downloaded"),
	); err != nil {
		return nil, err
	}
	if m.CalendarSyncEvents, err = meter.Int64Counter(
		"shift_calendar_sync_events_total",
		metric.WithDescription("Calendar events written by sync, by result"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// ScanObservation is what one processing request reports to the metrics
type ScanObservation struct {
	Outcome       string
	Strategy      string
	Duration      time.Duration
	Records       int
	SheetsSkipped int
	DownloadBytes int
}

// RecordScanMetrics records one processing request. A nil metrics is a no-op.
func RecordScanMetrics(ctx context.Context, metrics *ScanMetrics, obs ScanObservation) {
	if metrics == nil {
		return
	}
	outcome := metric.WithAttributes(attribute.String("outcome", obs.Outcome))
	strategy := metric.WithAttributes(attribute.String("strategy", obs.Strategy))

	metrics.ProcessRequestsTotal.Add(ctx, 1, outcome)
	metrics.ScanDuration.Record(ctx, obs.Duration.Seconds(), strategy)
	if obs.Records > 0 {
		metrics.RecordsExtracted.Add(ctx, int64(obs.Records), strategy)
	}
	if obs.SheetsSkipped > 0 {
		metrics.SheetsSkipped.Add(ctx, int64(obs.SheetsSkipped))
	}
	if obs.DownloadBytes > 0 {
		metrics.DownloadBytes.Add(ctx, int64(obs.DownloadBytes))
	}
}

// RecordSyncMetrics counts calendar writes by result
func RecordSyncMetrics(ctx context.Context, metrics *ScanMetrics, inserted, updated, failed int) {
	if metrics == nil {
		return
	}
	for result, n := range map[string]int{"inserted": inserted, "updated": updated, "failed": failed} {
		if n > 0 {
			metrics.CalendarSyncEvents.Add(ctx, int64(n), metric.WithAttributes(attribute.String("result", result)))
		}
	}
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span's trace ID for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
