package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/pkg/helpers"
)

// --- Fakes ---

type fakeMarket struct {
	mu          sync.Mutex
	calls       []string
	lastPoints  int
	overview    models.CompanyInfo
	overviewErr error
	quote       models.Quote
	quoteErr    error
	daily       models.PriceSeries
	hourly      models.PriceSeries
	historyErr  error
	quoteGate   chan struct{}
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		overview: models.CompanyInfo{Name: "International Business Machines", URL: "https://www.ibm.com"},
		quote:    models.Quote{Symbol: "IBM", Price: "150.00", Change: "1.50", ChangePercent: "1.01", LastUpdate: "2024-03-15"},
		daily:    models.PriceSeries{1, 2, 3},
		hourly:   models.PriceSeries{3, 2},
	}
}

func (f *fakeMarket) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMarket) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeMarket) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeMarket) set(fn func(f *fakeMarket)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeMarket) FetchOverview(_ context.Context, _ models.FetchRequest) (models.CompanyInfo, error) {
	f.record("overview")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overview, f.overviewErr
}

func (f *fakeMarket) FetchQuote(_ context.Context, _ models.FetchRequest) (models.Quote, error) {
	f.record("quote")
	f.mu.Lock()
	gate := f.quoteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote, f.quoteErr
}

func (f *fakeMarket) FetchDailyHistory(_ context.Context, _ models.FetchRequest, points int) (models.PriceSeries, error) {
	f.record("daily")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPoints = points
	return f.daily, f.historyErr
}

func (f *fakeMarket) FetchHourlyHistory(_ context.Context, _ models.FetchRequest, points int) (models.PriceSeries, error) {
	f.record("hourly")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPoints = points
	return f.hourly, f.historyErr
}

type fakeTelemetry struct {
	mu        sync.Mutex
	loadTimes []float64
	tracer    trace.Tracer
	spans     *tracetest.SpanRecorder
}

func newFakeTelemetry() *fakeTelemetry {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &fakeTelemetry{tracer: tp.Tracer("test"), spans: rec}
}

func (f *fakeTelemetry) RecordLoadTime(_ context.Context, ms float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadTimes = append(f.loadTimes, ms)
}

func (f *fakeTelemetry) Tracer() trace.Tracer { return f.tracer }

func (f *fakeTelemetry) LoadTimes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loadTimes)
}

type fakeTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire delivers one tick, or reports false once stopped.
func (t *fakeTicker) Fire() bool {
	if t.Stopped() {
		return false
	}
	t.ch <- time.Now()
	return true
}

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *tickerFactory) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time), interval: d}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *tickerFactory) Last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

type fakeIdle struct {
	mu      sync.Mutex
	pending []func()
}

func (f *fakeIdle) RequestIdle(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, fn)
}

func (f *fakeIdle) RunAll() int {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// --- Helpers ---

type harness struct {
	widget    *Widget
	market    *fakeMarket
	telemetry *fakeTelemetry
	tickers   *tickerFactory
}

func newHarness(t *testing.T, opts models.WidgetOptions, extra ...Option) *harness {
	t.Helper()
	if opts.ContainerID == "" {
		opts.ContainerID = "stocks-widget"
	}
	if opts.Symbol == "" {
		opts.Symbol = "IBM"
	}
	if opts.APIKey == "" {
		opts.APIKey = "demo"
	}
	cfg, err := ResolveConfig(opts)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}

	h := &harness{market: newFakeMarket(), telemetry: newFakeTelemetry(), tickers: &tickerFactory{}}
	base := []Option{
		WithLogger(helpers.TestLogger()),
		WithMarketData(h.market),
		WithTelemetry(h.telemetry),
		WithPacing(NoPacing),
		WithTicker(h.tickers.New),
	}
	h.widget = New(append(base, extra...)...)
	h.widget.SetConfig(cfg)
	t.Cleanup(h.widget.Detach)
	return h
}

func (h *harness) attach(t *testing.T) {
	t.Helper()
	if err := h.widget.Attach(helpers.TestCtx()); err != nil {
		t.Fatalf("attach: %v", err)
	}
}
