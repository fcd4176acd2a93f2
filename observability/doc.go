// Package observability provides OpenTelemetry tracing and metrics for
// flow runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("flowcheck"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanFlowRun)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("flowcheck"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("flowcheck"))
//	metrics.RecordCheck(ctx, "data_integrity", "COMPLETED", duration)
//
// Both exporters speak OTLP over HTTP. When no collector is configured the
// engine runs with the default no-op providers, so instrumentation costs
// nothing in tests.
package observability
