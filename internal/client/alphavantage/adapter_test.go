package avclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/pkg/helpers"
)

// --- Fakes ---

type fakeTelemetry struct {
	apiErrors int
	tracer    trace.Tracer
}

func (f *fakeTelemetry) IncrementAPIError(_ context.Context) { f.apiErrors++ }
func (f *fakeTelemetry) Tracer() trace.Tracer                { return f.tracer }

const (
	overviewBody = `{"Symbol":"IBM","Name":"International Business Machines","OfficialSite":"https://www.ibm.com"}`
	quoteBody    = `{"Global Quote":{"01. symbol":"IBM","02. open":"149.00","05. price":"150.0000","07. latest trading day":"2024-03-15","09. change":"-1.5","10. change percent":"-0.9901%"}}`
	dailyBody    = `{"Meta Data":{"2. Symbol":"IBM"},"Time Series (Daily)":{"2024-01-03":{"1. open":"2.5","4. close":"3.0"},"2024-01-02":{"1. open":"1.5","4. close":"2.0"}}}`
	hourlyBody   = `{"Meta Data":{},"Time Series (60min)":{"2024-01-02 11:00:00":{"4. close":"10"},"2024-01-02 10:00:00":{"4. close":"9"},"2024-01-02 09:00:00":{"4. close":"8"}}}`
)

type testEnv struct {
	adapter   *Adapter
	telemetry *fakeTelemetry
	spans     *tracetest.SpanRecorder
	lastQuery func() map[string]string
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	var last map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		last = map[string]string{}
		for k := range r.URL.Query() {
			last[k] = r.URL.Query().Get(k)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tel := &fakeTelemetry{tracer: tp.Tracer("test")}

	return &testEnv{
		adapter:   NewAdapter(helpers.TestLogger(), srv.URL, time.Second, tel),
		telemetry: tel,
		spans:     rec,
		lastQuery: func() map[string]string { return last },
	}
}

func body(s string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s))
	}
}

var validReq = models.FetchRequest{Symbol: "IBM", APIKey: "demo"}

// --- Tests ---

func TestFetchOverview_OK(t *testing.T) {
	env := newTestEnv(t, body(overviewBody))

	info, err := env.adapter.FetchOverview(context.Background(), validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "International Business Machines" || info.URL != "https://www.ibm.com" {
		t.Fatalf("unexpected info %+v", info)
	}
	q := env.lastQuery()
	if q["function"] != "OVERVIEW" || q["symbol"] != "IBM" || q["apikey"] != "demo" {
		t.Fatalf("unexpected query %v", q)
	}
	if env.telemetry.apiErrors != 0 {
		t.Fatalf("expected no api errors, got %d", env.telemetry.apiErrors)
	}
	if n := len(env.spans.Ended()); n != 1 || env.spans.Ended()[0].Name() != "stocks.fetch" {
		t.Fatalf("expected one stocks.fetch span, got %d", n)
	}
}

func TestFetchQuote_FormatsFixedDecimals(t *testing.T) {
	env := newTestEnv(t, body(quoteBody))

	q, err := env.adapter.FetchQuote(context.Background(), validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.Quote{Symbol: "IBM", Price: "150.00", Change: "-1.50", ChangePercent: "-0.99", LastUpdate: "2024-03-15"}
	if q != want {
		t.Fatalf("got %+v, want %+v", q, want)
	}
	if env.lastQuery()["function"] != "GLOBAL_QUOTE" {
		t.Fatalf("unexpected function %q", env.lastQuery()["function"])
	}
}

func TestFetchDailyHistory_OldestFirst(t *testing.T) {
	env := newTestEnv(t, body(dailyBody))

	series, err := env.adapter.FetchDailyHistory(context.Background(), validReq, DailyPoints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(series, models.PriceSeries{2, 3}) {
		t.Fatalf("got %v, want [2 3]", series)
	}
}

func TestFetchHourlyHistory_TakesFirstEntriesInDocumentOrder(t *testing.T) {
	env := newTestEnv(t, body(hourlyBody))

	series, err := env.adapter.FetchHourlyHistory(context.Background(), validReq, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(series, models.PriceSeries{9, 10}) {
		t.Fatalf("got %v, want [9 10]", series)
	}
	q := env.lastQuery()
	if q["function"] != "TIME_SERIES_INTRADAY" || q["interval"] != "60min" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestFetch_MissingAPIKey(t *testing.T) {
	called := false
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) { called = true })

	_, err := env.adapter.FetchQuote(context.Background(), models.FetchRequest{Symbol: "IBM"})

	var mce *errs.MissingCredentialError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingCredentialError, got %T %v", err, err)
	}
	if called {
		t.Fatal("no request should be sent without an API key")
	}
	if env.telemetry.apiErrors != 1 {
		t.Fatalf("expected 1 api error, got %d", env.telemetry.apiErrors)
	}
	if len(env.spans.Ended()) != 1 {
		t.Fatalf("expected one span, got %d", len(env.spans.Ended()))
	}
}

func TestFetch_TransportError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := env.adapter.FetchOverview(context.Background(), validReq)

	var te *errs.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", te.StatusCode)
	}
	if te.Error() != "Market API request failed" {
		t.Fatalf("unexpected message %q", te.Error())
	}
	if env.telemetry.apiErrors != 1 {
		t.Fatalf("expected 1 api error, got %d", env.telemetry.apiErrors)
	}
}

func TestFetch_MalformedBodyIsTransportError(t *testing.T) {
	env := newTestEnv(t, body(`<html>oops`))

	_, err := env.adapter.FetchQuote(context.Background(), validReq)

	var te *errs.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestFetch_InvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		call    func(a *Adapter) error
		message string
	}{
		{
			name:    "overview without name",
			body:    `{}`,
			call:    func(a *Adapter) error { _, err := a.FetchOverview(context.Background(), validReq); return err },
			message: "Invalid market data",
		},
		{
			name:    "quote rate limited",
			body:    `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
			call:    func(a *Adapter) error { _, err := a.FetchQuote(context.Background(), validReq); return err },
			message: "Invalid market data",
		},
		{
			name:    "daily series missing",
			body:    `{"Meta Data":{}}`,
			call:    func(a *Adapter) error { _, err := a.FetchDailyHistory(context.Background(), validReq, 7); return err },
			message: "Invalid historical data",
		},
		{
			name:    "hourly close not numeric",
			body:    `{"Time Series (60min)":{"2024-01-02 10:00:00":{"4. close":"n/a"}}}`,
			call:    func(a *Adapter) error { _, err := a.FetchHourlyHistory(context.Background(), validReq, 24); return err },
			message: "Invalid historical data",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, body(tc.body))

			err := tc.call(env.adapter)

			var ipe *errs.InvalidPayloadError
			if !errors.As(err, &ipe) {
				t.Fatalf("expected InvalidPayloadError, got %T %v", err, err)
			}
			if ipe.Error() != tc.message {
				t.Fatalf("got message %q, want %q", ipe.Error(), tc.message)
			}
			if env.telemetry.apiErrors != 1 {
				t.Fatalf("expected exactly 1 api error, got %d", env.telemetry.apiErrors)
			}
			if len(env.spans.Ended()) != 1 {
				t.Fatalf("expected one span, got %d", len(env.spans.Ended()))
			}
		})
	}
}

func TestApiNotice(t *testing.T) {
	got := apiNotice([]byte(`{"Information":"premium endpoint"}`))
	if got != "premium endpoint" {
		t.Fatalf("unexpected notice %q", got)
	}
	if apiNotice([]byte(`{}`)) != "" {
		t.Fatal("expected empty notice")
	}
}
