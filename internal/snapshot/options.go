package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/render"
)

// MarketData is the market-data client a widget polls.
type MarketData interface {
	FetchOverview(ctx context.Context, req models.FetchRequest) (models.CompanyInfo, error)
	FetchQuote(ctx context.Context, req models.FetchRequest) (models.Quote, error)
	FetchDailyHistory(ctx context.Context, req models.FetchRequest, points int) (models.PriceSeries, error)
	FetchHourlyHistory(ctx context.Context, req models.FetchRequest, points int) (models.PriceSeries, error)
}

type Telemetry interface {
	RecordLoadTime(ctx context.Context, ms float64)
	Tracer() trace.Tracer
}

// Pacing returns the wait before initialization step n (1 or 2). Alpha
// Vantage throttles bursts, so the default spaces calls out.
type Pacing func(step int) time.Duration

func FixedPacing(d time.Duration) Pacing {
	return func(int) time.Duration { return d }
}

var (
	DefaultPacing = FixedPacing(2 * time.Second)
	NoPacing      = FixedPacing(0)
)

// Ticker drives the refresh loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// IdleScheduler defers low priority work, such as drawing the sparkline.
type IdleScheduler interface {
	RequestIdle(fn func())
}

type IdleFunc func(fn func())

func (f IdleFunc) RequestIdle(fn func()) { f(fn) }

// GoIdle runs deferred work on its own goroutine.
var GoIdle = IdleFunc(func(fn func()) { go fn() })

type Option func(*Widget)

func WithID(id string) Option {
	return func(w *Widget) { w.id = id }
}

func WithLogger(log *slog.Logger) Option {
	return func(w *Widget) { w.baseLog = log }
}

func WithMarketData(m MarketData) Option {
	return func(w *Widget) { w.market = m }
}

func WithTelemetry(t Telemetry) Option {
	return func(w *Widget) { w.telemetry = t }
}

func WithPacing(p Pacing) Option {
	return func(w *Widget) { w.pacing = p }
}

// WithIdleScheduler sets where sparkline drawing is deferred to. Without
// one the sparkline is drawn as soon as its data arrives.
func WithIdleScheduler(s IdleScheduler) Option {
	return func(w *Widget) { w.idle = s }
}

func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(w *Widget) { w.newTicker = newTicker }
}

func WithSparklineRenderer(fn func([]float64, render.SparklineOptions) string) Option {
	return func(w *Widget) { w.drawSparkline = fn }
}

func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

var errNoMarketData = errors.New("no market data client configured")

type unavailableMarket struct{}

func (unavailableMarket) FetchOverview(context.Context, models.FetchRequest) (models.CompanyInfo, error) {
	return models.CompanyInfo{}, errs.NewTransportError(0, errNoMarketData)
}

func (unavailableMarket) FetchQuote(context.Context, models.FetchRequest) (models.Quote, error) {
	return models.Quote{}, errs.NewTransportError(0, errNoMarketData)
}

func (unavailableMarket) FetchDailyHistory(context.Context, models.FetchRequest, int) (models.PriceSeries, error) {
	return nil, errs.NewTransportError(0, errNoMarketData)
}

func (unavailableMarket) FetchHourlyHistory(context.Context, models.FetchRequest, int) (models.PriceSeries, error) {
	return nil, errs.NewTransportError(0, errNoMarketData)
}
