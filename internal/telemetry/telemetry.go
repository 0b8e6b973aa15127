package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the meter and tracer name for all widget signals.
const InstrumentationName = "r2-stocks-widget"

const (
	loadTimeMetric  = "widget.load_time"
	apiErrorsMetric = "stocks.api_errors"
)

// Hooks records widget telemetry. A nil *Hooks, or one built with a nil
// meter provider, logs the signals at debug level instead.
type Hooks struct {
	log       *slog.Logger
	loadTime  metric.Float64Histogram
	apiErrors metric.Int64Counter
	tracer    trace.Tracer
}

// New builds hooks from the given providers. Either provider may be nil.
func New(log *slog.Logger, mp metric.MeterProvider, tp trace.TracerProvider) (*Hooks, error) {
	if log == nil {
		log = slog.Default()
	}
	h := &Hooks{log: log}

	if tp != nil {
		h.tracer = tp.Tracer(InstrumentationName)
	}
	if mp == nil {
		return h, nil
	}

	meter := mp.Meter(InstrumentationName)
	var err error
	h.loadTime, err = meter.Float64Histogram(loadTimeMetric,
		metric.WithDescription("Time from widget attach to first rendered frame"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	h.apiErrors, err = meter.Int64Counter(apiErrorsMetric,
		metric.WithDescription("Failed market data calls"),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Disabled returns hooks that only log.
func Disabled(log *slog.Logger) *Hooks {
	h, _ := New(log, nil, nil)
	return h
}

func (h *Hooks) RecordLoadTime(ctx context.Context, ms float64) {
	if h == nil || h.loadTime == nil {
		h.logger().Debug("[telemetry] load_time", "ms", ms)
		return
	}
	h.loadTime.Record(ctx, ms)
}

func (h *Hooks) IncrementAPIError(ctx context.Context) {
	if h == nil || h.apiErrors == nil {
		h.logger().Debug("[telemetry] api_error")
		return
	}
	h.apiErrors.Add(ctx, 1)
}

// Tracer never returns nil.
func (h *Hooks) Tracer() trace.Tracer {
	if h == nil || h.tracer == nil {
		return noop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return h.tracer
}

func (h *Hooks) logger() *slog.Logger {
	if h == nil || h.log == nil {
		return slog.Default()
	}
	return h.log
}
