package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/render"
	"github.com/GregMSThompson/stocks-snapshot/internal/telemetry"
)

// Sparkline series lengths.
const (
	WeekPoints   = 7
	HourlyPoints = 24
)

// State is the widget lifecycle. Detached is terminal.
type State int

const (
	Unattached State = iota
	Attaching
	Active
	Detached
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attaching:
		return "attaching"
	case Active:
		return "active"
	case Detached:
		return "detached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type sparklineState int

const (
	sparklinePending sparklineState = iota
	sparklineCommitted
)

type clickListener struct {
	id int
	fn func(models.QuoteClick)
}

// Widget is one stock snapshot: it owns its surface, polls the market on a
// ticker while attached and never returns market errors to callers; they
// are rendered into the error slot instead.
type Widget struct {
	id            string
	baseLog       *slog.Logger
	log           *slog.Logger
	market        MarketData
	telemetry     Telemetry
	pacing        Pacing
	idle          IdleScheduler
	newTicker     func(time.Duration) Ticker
	drawSparkline func([]float64, render.SparklineOptions) string
	now           func() time.Time
	surface       *Surface

	mu        sync.Mutex
	cfg       *models.WidgetConfig
	state     State
	req       models.FetchRequest
	prices    models.PriceSeries
	sparkline sparklineState
	style     map[string]string
	host      *Container
	ticker    Ticker
	done      chan struct{}
	initDone  chan struct{}
	listeners []clickListener
	nextID    int
}

func New(opts ...Option) *Widget {
	w := &Widget{
		market:        unavailableMarket{},
		pacing:        DefaultPacing,
		newTicker:     newTimeTicker,
		drawSparkline: render.Sparkline,
		now:           time.Now,
		surface:       newSurface(),
		style:         map[string]string{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = uuid.NewString()
	}
	if w.baseLog == nil {
		w.baseLog = slog.Default()
	}
	w.log = w.baseLog.With("widget_id", w.id)
	if w.telemetry == nil {
		w.telemetry = telemetry.Disabled(w.log)
	}
	if w.pacing == nil {
		w.pacing = NoPacing
	}
	return w
}

func (w *Widget) ID() string { return w.id }

// SetConfig must be called before Attach. Later calls are ignored.
func (w *Widget) SetConfig(cfg models.WidgetConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Unattached {
		w.log.Warn("config change after attach ignored", "state", w.state.String())
		return
	}
	theme := make(map[string]string, len(cfg.Theme))
	for k, v := range cfg.Theme {
		theme[k] = v
	}
	cfg.Theme = theme
	w.cfg = &cfg
}

func (w *Widget) Config() (models.WidgetConfig, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cfg == nil {
		return models.WidgetConfig{}, false
	}
	return *w.cfg, true
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Attach renders the static shell synchronously, then starts the
// initialization sequence and the refresh ticker in the background. The
// only error it returns is a missing config.
func (w *Widget) Attach(ctx context.Context) error {
	w.mu.Lock()
	if w.cfg == nil {
		w.mu.Unlock()
		return errs.NewConfigError("config", "config is required")
	}
	if w.state != Unattached {
		state := w.state
		w.mu.Unlock()
		w.log.Warn("attach ignored", "state", state.String())
		return nil
	}

	start := w.now()
	w.state = Attaching
	cfg := *w.cfg
	w.req = models.FetchRequest{Symbol: cfg.Symbol, APIKey: cfg.APIKey}
	w.propagateHostStyles()
	for k, v := range cfg.Theme {
		w.style["--stocks-"+k] = v
	}
	w.mu.Unlock()

	if cfg.FontURL != "" {
		w.surface.addFont(cfg.FontURL)
	}
	w.renderShell()
	w.telemetry.RecordLoadTime(ctx, float64(w.now().Sub(start))/float64(time.Millisecond))

	w.mu.Lock()
	if w.state != Attaching {
		// detached while the shell was rendering
		w.mu.Unlock()
		return nil
	}
	w.done = make(chan struct{})
	w.initDone = make(chan struct{})
	w.ticker = w.newTicker(cfg.RefreshInterval)
	w.state = Active
	ticker, done, initDone := w.ticker, w.done, w.initDone
	w.mu.Unlock()

	w.log.Info("widget attached", "symbol", cfg.Symbol, "refresh_interval", cfg.RefreshInterval.String(), "sparkline", string(cfg.Sparkline))

	// Background work outlives the caller's context; in-flight calls are
	// never cancelled by detach.
	bg := context.WithoutCancel(ctx)
	go w.initialize(bg, done, initDone)
	go w.poll(bg, ticker, done)
	return nil
}

// Detach stops the refresh ticker and closes the surface. It is safe to
// call in any state, any number of times.
func (w *Widget) Detach() {
	w.mu.Lock()
	if w.state == Detached {
		w.mu.Unlock()
		return
	}
	prev := w.state
	w.state = Detached
	if w.ticker != nil {
		w.ticker.Stop()
		w.ticker = nil
	}
	if w.done != nil {
		close(w.done)
	}
	w.mu.Unlock()

	w.surface.close()
	w.log.Info("widget detached", "from_state", prev.String())
}

// Wait blocks until the initialization sequence has finished or stopped.
// It returns at once if the sequence never started.
func (w *Widget) Wait() {
	w.mu.Lock()
	initDone := w.initDone
	w.mu.Unlock()
	if initDone != nil {
		<-initDone
	}
}

func (w *Widget) initialize(ctx context.Context, done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)

	steps := []func(context.Context){
		w.LoadCompanyName,
		w.RefreshQuote,
		w.LoadSparkline,
	}
	for i, step := range steps {
		if i > 0 && !w.pause(i, done) {
			return
		}
		select {
		case <-done:
			return
		default:
		}
		step(ctx)
	}
}

func (w *Widget) pause(step int, done <-chan struct{}) bool {
	d := w.pacing(step)
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}

func (w *Widget) poll(ctx context.Context, ticker Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			select {
			case <-done:
				return
			default:
			}
			w.RefreshQuote(ctx)
		}
	}
}

// active returns the fetch request while the widget is attaching or active.
func (w *Widget) active() (models.FetchRequest, models.WidgetConfig, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cfg == nil || (w.state != Attaching && w.state != Active) {
		return models.FetchRequest{}, models.WidgetConfig{}, false
	}
	return w.req, *w.cfg, true
}

// LoadCompanyName fetches the overview once and binds the symbol click.
func (w *Widget) LoadCompanyName(ctx context.Context) {
	req, _, ok := w.active()
	if !ok {
		return
	}
	info, err := w.market.FetchOverview(ctx, req)
	if err != nil {
		w.renderError(models.ErrorSourceCompany, err)
		return
	}

	w.mu.Lock()
	w.req.CompanyURL = info.URL
	w.mu.Unlock()

	w.renderCompanyName(info.Name)
}

// RefreshQuote fetches and renders the latest quote.
func (w *Widget) RefreshQuote(ctx context.Context) {
	req, _, ok := w.active()
	if !ok {
		return
	}
	quote, err := w.market.FetchQuote(ctx, req)
	if err != nil {
		w.renderError(models.ErrorSourceQuote, err)
		return
	}
	w.renderQuote(ctx, quote)
}

// LoadSparkline fetches the history for the configured mode. Failures are
// logged and otherwise ignored.
func (w *Widget) LoadSparkline(ctx context.Context) {
	req, cfg, ok := w.active()
	if !ok || !cfg.Sparkline.Enabled() {
		return
	}

	var (
		series models.PriceSeries
		err    error
	)
	if cfg.Sparkline == models.SparklineWeek {
		series, err = w.market.FetchDailyHistory(ctx, req, WeekPoints)
	} else {
		series, err = w.market.FetchHourlyHistory(ctx, req, HourlyPoints)
	}
	if err != nil {
		w.log.Debug("sparkline history unavailable", "symbol", req.Symbol, "error", errs.Describe(err))
		return
	}

	w.mu.Lock()
	w.prices = slices.Clone(series)
	w.mu.Unlock()

	w.scheduleSparklineRender()
}

func (w *Widget) scheduleSparklineRender() {
	w.mu.Lock()
	enabled := w.cfg != nil && w.cfg.Sparkline.Enabled()
	n := len(w.prices)
	w.mu.Unlock()

	if !enabled || n < 2 {
		return
	}
	if w.idle == nil {
		w.RenderSparkline()
		return
	}
	w.idle.RequestIdle(w.RenderSparkline)
}

// RenderSparkline draws the captured series once per attach.
func (w *Widget) RenderSparkline() {
	w.mu.Lock()
	if w.sparkline == sparklineCommitted ||
		(w.state != Attaching && w.state != Active) ||
		w.cfg == nil || !w.cfg.Sparkline.Enabled() ||
		len(w.prices) < 2 {
		w.mu.Unlock()
		return
	}
	prices := slices.Clone(w.prices)
	w.sparkline = sparklineCommitted
	w.mu.Unlock()

	markup := w.drawSparkline(prices, render.SparklineOptions{
		Stroke: render.SparklineStroke(prices.First(), prices.Last()),
	})
	w.surface.update(func(v *models.WidgetView) {
		v.Sparkline = markup
		v.SparklineHasData = true
	})
}

// OnQuoteClick subscribes fn to quoteClick events. The returned func
// unsubscribes.
func (w *Widget) OnQuoteClick(fn func(models.QuoteClick)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.listeners = append(w.listeners, clickListener{id: id, fn: fn})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.listeners = slices.DeleteFunc(w.listeners, func(l clickListener) bool { return l.id == id })
	}
}

// ClickSymbol emits one quoteClick event when the symbol is clickable,
// which it becomes once the company name has rendered.
func (w *Widget) ClickSymbol() (models.QuoteClick, bool) {
	if !w.surface.View().SymbolClickable {
		return models.QuoteClick{}, false
	}

	w.mu.Lock()
	ev := models.QuoteClick{Symbol: w.req.Symbol, URL: w.req.CompanyURL, ClickedAt: w.now()}
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	for _, l := range listeners {
		l.fn(ev)
	}
	return ev, true
}

func (w *Widget) Surface() *Surface { return w.surface }

func (w *Widget) View() models.WidgetView { return w.surface.View() }

// Style is the widget's own style scope: propagated host variables and
// theme variables.
func (w *Widget) Style() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.style))
	for k, v := range w.style {
		out[k] = v
	}
	return out
}

func (w *Widget) Prices() models.PriceSeries {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.prices)
}

func (w *Widget) FetchRequest() models.FetchRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req
}

func (w *Widget) HTML() (string, error) {
	return render.WidgetHTML(w.surface.View(), w.Style(), w.surface.Fonts())
}

func (w *Widget) renderShell() {
	w.surface.update(func(v *models.WidgetView) {
		*v = models.WidgetView{Loading: true}
	})
}

func (w *Widget) renderError(source models.ErrorSource, err error) {
	w.log.Warn("widget fetch failed", "source", string(source), "error", errs.Describe(err))
	w.surface.update(func(v *models.WidgetView) {
		v.Error = "Error: " + err.Error()
		v.ErrorSource = source
		v.SpinnerError = true
	})
}

func (w *Widget) renderCompanyName(name string) {
	w.surface.update(func(v *models.WidgetView) {
		v.CompanyName = name
		v.SymbolClickable = true
		clearError(v, models.ErrorSourceCompany)
	})
}

func (w *Widget) renderQuote(ctx context.Context, q models.Quote) {
	_, span := w.telemetry.Tracer().Start(ctx, "widget.render", trace.WithAttributes(
		attribute.String("stocks.symbol", q.Symbol),
	))
	defer span.End()

	w.surface.update(func(v *models.WidgetView) {
		v.Symbol = "(" + q.Symbol + ")"
		v.Price = "$" + q.Price
		v.Loading = false
		v.Change = fmt.Sprintf("$%s (%s%%)", q.Change, q.ChangePercent)
		v.Direction = classifyChange(q.Change)
		v.Timestamp = "Last update: " + formatDate(q.LastUpdate)
		clearError(v, models.ErrorSourceQuote)
	})
}

// clearError empties the error slot if source put the error there.
func clearError(v *models.WidgetView, source models.ErrorSource) {
	if v.ErrorSource != source {
		return
	}
	v.Error = ""
	v.ErrorSource = models.ErrorSourceNone
	v.SpinnerError = false
}
