package bootstrap

import (
	"context"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/GregMSThompson/stocks-snapshot/internal/config"
	"github.com/GregMSThompson/stocks-snapshot/internal/telemetry"
)

// initTelemetry exports metrics to Cloud Monitoring and spans to Cloud Trace
// when a project is set. Without one, or with TELEMETRYENABLED=false, hooks
// only log.
func (bs *Bootstrap) initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Hooks, error) {
	if !cfg.TelemetryEnabled || !cfg.CloudEnabled() {
		return telemetry.Disabled(bs.Log), nil
	}

	metrics, err := mexporter.New(mexporter.WithProjectID(cfg.ProjectID))
	if err != nil {
		return nil, err
	}
	spans, err := texporter.New(texporter.WithProjectID(cfg.ProjectID))
	if err != nil {
		return nil, err
	}

	res := serviceResource()
	mp := newMeterProvider(sdkmetric.NewPeriodicReader(metrics), res)
	tp := newTracerProvider(spans, res)
	bs.addCloser(mp.Shutdown)
	bs.addCloser(tp.Shutdown)

	bs.Log.Info("telemetry enabled", "project", cfg.ProjectID)
	return telemetry.New(bs.Log, mp, tp)
}

func serviceResource() *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", telemetry.InstrumentationName))
}

func newMeterProvider(reader sdkmetric.Reader, res *resource.Resource) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
}

// newTracerProvider batches ended spans to exp.
func newTracerProvider(exp sdktrace.SpanExporter, res *resource.Resource) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
}
