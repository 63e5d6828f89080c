package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/navuxneeth/NASA-Challenge/core"
	"github.com/navuxneeth/NASA-Challenge/internal/logging"
)

// TracingConfig governs how docking session spans are exported.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // stdout | otlp
	Endpoint    string // used when Exporter == otlp
	SampleRatio float64

	// Outcomes limits export to sessions that ended with one of these
	// outcomes ("succeeded", "failed", "aborted"). Empty exports all.
	Outcomes []string
	// Tuning is attached to the trace resource so every exported session
	// carries the parameters it was flown with. See TuningAttributes.
	Tuning []attribute.KeyValue

	// Writer receives spans from the stdout exporter; defaults to stderr.
	Writer io.Writer
}

// TracingConfigFromEnv reads the DOCKINGSIM_TRACING_* variables.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("DOCKINGSIM_TRACING_ENABLED"), "true"),
		ServiceName: "dockingsim",
		Exporter:    "stdout",
		Endpoint:    os.Getenv("DOCKINGSIM_OTLP_ENDPOINT"),
		SampleRatio: 1,
	}
	if v := os.Getenv("DOCKINGSIM_TRACING_EXPORTER"); v != "" {
		cfg.Exporter = strings.ToLower(v)
	}
	if v := os.Getenv("DOCKINGSIM_TRACING_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("DOCKINGSIM_TRACING_SAMPLE_RATIO"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 && r <= 1 {
			cfg.SampleRatio = r
		}
	}
	for _, o := range strings.Split(os.Getenv("DOCKINGSIM_TRACING_OUTCOMES"), ",") {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			cfg.Outcomes = append(cfg.Outcomes, o)
		}
	}
	return cfg
}

// TuningAttributes describes a docking configuration as resource attributes.
func TuningAttributes(cfg core.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("docking.thrust_power", cfg.ThrustPower),
		attribute.Float64("docking.rotation_speed", cfg.RotationSpeed),
		attribute.Float64("docking.drag", cfg.Drag),
		attribute.Float64("docking.capture_radius", cfg.CaptureRadius),
		attribute.Float64("docking.approach_radius", cfg.ApproachRadius),
		attribute.Float64("docking.speed_threshold", cfg.SpeedThreshold),
		attribute.Float64("docking.angle_threshold", cfg.AngleThreshold),
		attribute.String("docking.max_frame_delta", cfg.MaxFrameDelta.String()),
	}
}

// InitTracing installs the global tracer provider used by core.Controller
// and returns a shutdown function that flushes pending sessions.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		log.Debug(ctx, "session tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := exporterFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	attrs := append([]attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "orbital-perspectives"),
	}, cfg.Tuning...)
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var processor sdktrace.SpanProcessor = sdktrace.NewBatchSpanProcessor(exp)
	if len(cfg.Outcomes) > 0 {
		processor = newOutcomeFilter(processor, cfg.Outcomes)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info(ctx, "session tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service_name", cfg.ServiceName),
		logging.Float("sample_ratio", cfg.SampleRatio),
		logging.Any("outcomes", cfg.Outcomes),
	)
	return tp.Shutdown, nil
}

func exporterFromConfig(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "stdout", "":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
	case "otlp", "otlpgrpc":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
}

// outcomeFilter drops session spans whose outcome is not wanted. Spans that
// carry no outcome pass through.
type outcomeFilter struct {
	sdktrace.SpanProcessor
	keep map[string]bool
}

func newOutcomeFilter(next sdktrace.SpanProcessor, outcomes []string) outcomeFilter {
	keep := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		keep[strings.ToLower(o)] = true
	}
	return outcomeFilter{SpanProcessor: next, keep: keep}
}

func (f outcomeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	for _, kv := range s.Attributes() {
		if kv.Key == core.OutcomeKey && !f.keep[kv.Value.AsString()] {
			return
		}
	}
	f.SpanProcessor.OnEnd(s)
}

// ShutdownWithTimeout flushes spans, giving up after five seconds.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
