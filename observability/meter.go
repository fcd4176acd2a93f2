package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/flowcheck/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds metric instruments for flow run observability.
type Metrics struct {
	runTotal      metric.Int64Counter
	runDuration   metric.Float64Histogram
	checkTotal    metric.Int64Counter
	checkDuration metric.Float64Histogram
	findingTotal  metric.Int64Counter
	blockedTotal  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("flow.runs",
		metric.WithDescription("Total number of flow runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("flow.run.duration",
		metric.WithDescription("Duration of flow runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.run.duration histogram: %w", err)
	}

	checkTotal, err := meter.Int64Counter("flow.checks",
		metric.WithDescription("Total number of check executions by terminal status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.checks counter: %w", err)
	}

	checkDuration, err := meter.Float64Histogram("flow.check.duration",
		metric.WithDescription("Duration of individual checks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.check.duration histogram: %w", err)
	}

	findingTotal, err := meter.Int64Counter("flow.findings",
		metric.WithDescription("Total findings reported by checks, by severity"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.findings counter: %w", err)
	}

	blockedTotal, err := meter.Int64Counter("flow.nodes.blocked",
		metric.WithDescription("Total nodes blocked by upstream failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flow.nodes.blocked counter: %w", err)
	}

	return &Metrics{
		runTotal:      runTotal,
		runDuration:   runDuration,
		checkTotal:    checkTotal,
		checkDuration: checkDuration,
		findingTotal:  findingTotal,
		blockedTotal:  blockedTotal,
	}, nil
}

// RecordRun records a completed flow run.
func (m *Metrics) RecordRun(ctx context.Context, scope, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("status", status),
	)
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

// RecordCheck records a check execution with its terminal node status.
func (m *Metrics) RecordCheck(ctx context.Context, node, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("status", status),
	)
	m.checkTotal.Add(ctx, 1, attrs)
	m.checkDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("node", node),
	))
}

// RecordFindings records findings reported by a check, grouped by severity.
func (m *Metrics) RecordFindings(ctx context.Context, node, severity string, count int64) {
	if count == 0 {
		return
	}
	m.findingTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("severity", severity),
	))
}

// RecordBlocked records nodes blocked by an upstream failure.
func (m *Metrics) RecordBlocked(ctx context.Context, count int64) {
	if count == 0 {
		return
	}
	m.blockedTotal.Add(ctx, count)
}
