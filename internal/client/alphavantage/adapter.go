package avclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	DefaultTimeout = 30 * time.Second

	// DailyPoints and HourlyPoints bound the sparkline series.
	DailyPoints  = 7
	HourlyPoints = 24

	spanName = "stocks.fetch"

	dailySeriesKey  = "Time Series (Daily)"
	hourlySeriesKey = "Time Series (60min)"
)

type telemetryHooks interface {
	IncrementAPIError(ctx context.Context)
	Tracer() trace.Tracer
}

// Adapter is a stateless Alpha Vantage client. Every call is one GET and
// reports failures to the telemetry hooks exactly once.
type Adapter struct {
	client    *resty.Client
	telemetry telemetryHooks
	log       *slog.Logger
}

func NewAdapter(log *slog.Logger, baseURL string, timeout time.Duration, hooks telemetryHooks) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Adapter{
		client:    client,
		telemetry: hooks,
		log:       log,
	}
}

type overviewResponse struct {
	Name         string `json:"Name"`
	OfficialSite string `json:"OfficialSite"`
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Price            string `json:"05. price"`
		LatestTradingDay string `json:"07. latest trading day"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
}

func (a *Adapter) FetchOverview(ctx context.Context, req models.FetchRequest) (models.CompanyInfo, error) {
	var info models.CompanyInfo
	err := a.call(ctx, req, "OVERVIEW", nil, func(body []byte) error {
		var raw overviewResponse
		if err := json.Unmarshal(body, &raw); err != nil {
			return errs.NewInvalidPayloadError("Invalid market data", "Name", err.Error())
		}
		if raw.Name == "" {
			return errs.NewInvalidPayloadError("Invalid market data", "Name", apiNotice(body))
		}
		info = models.CompanyInfo{Name: raw.Name, URL: raw.OfficialSite}
		return nil
	})
	return info, err
}

func (a *Adapter) FetchQuote(ctx context.Context, req models.FetchRequest) (models.Quote, error) {
	var quote models.Quote
	err := a.call(ctx, req, "GLOBAL_QUOTE", nil, func(body []byte) error {
		var raw globalQuoteResponse
		if err := json.Unmarshal(body, &raw); err != nil {
			return errs.NewInvalidPayloadError("Invalid market data", "Global Quote", err.Error())
		}
		gq := raw.GlobalQuote
		if gq.Price == "" {
			return errs.NewInvalidPayloadError("Invalid market data", "05. price", apiNotice(body))
		}

		price, err := fixed2(gq.Price)
		if err != nil {
			return errs.NewInvalidPayloadError("Invalid market data", "05. price", err.Error())
		}
		change, err := fixed2(gq.Change)
		if err != nil {
			return errs.NewInvalidPayloadError("Invalid market data", "09. change", err.Error())
		}
		pct, err := fixed2(strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"))
		if err != nil {
			return errs.NewInvalidPayloadError("Invalid market data", "10. change percent", err.Error())
		}

		symbol := gq.Symbol
		if symbol == "" {
			symbol = req.Symbol
		}
		quote = models.Quote{
			Symbol:        symbol,
			Price:         price,
			Change:        change,
			ChangePercent: pct,
			LastUpdate:    gq.LatestTradingDay,
		}
		return nil
	})
	return quote, err
}

func (a *Adapter) FetchDailyHistory(ctx context.Context, req models.FetchRequest, points int) (models.PriceSeries, error) {
	if points <= 0 {
		points = DailyPoints
	}
	var series models.PriceSeries
	err := a.call(ctx, req, "TIME_SERIES_DAILY", nil, func(body []byte) error {
		var err error
		series, err = closes(body, dailySeriesKey, points)
		return err
	})
	return series, err
}

func (a *Adapter) FetchHourlyHistory(ctx context.Context, req models.FetchRequest, points int) (models.PriceSeries, error) {
	if points <= 0 {
		points = HourlyPoints
	}
	var series models.PriceSeries
	extra := map[string]string{"interval": "60min"}
	err := a.call(ctx, req, "TIME_SERIES_INTRADAY", extra, func(body []byte) error {
		var err error
		series, err = closes(body, hourlySeriesKey, points)
		return err
	})
	return series, err
}

// call runs one request inside a stocks.fetch span.
func (a *Adapter) call(ctx context.Context, req models.FetchRequest, function string, extra map[string]string, parse func(body []byte) error) (err error) {
	ctx, span := a.tracer().Start(ctx, spanName, trace.WithAttributes(
		attribute.String("stocks.function", function),
		attribute.String("stocks.symbol", req.Symbol),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if a.telemetry != nil {
				a.telemetry.IncrementAPIError(ctx)
			}
			a.log.Warn("market data call failed",
				"function", function,
				"symbol", req.Symbol,
				"error", errs.Describe(err))
		}
		span.End()
	}()

	if req.APIKey == "" {
		return errs.NewMissingCredentialError()
	}

	params := map[string]string{
		"function": function,
		"symbol":   req.Symbol,
		"apikey":   req.APIKey,
	}
	for k, v := range extra {
		params[k] = v
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		return errs.NewTransportError(0, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
	if resp.IsError() {
		return errs.NewTransportError(resp.StatusCode(), nil)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return errs.NewTransportError(resp.StatusCode(), fmt.Errorf("malformed response body"))
	}
	return parse(body)
}

func (a *Adapter) tracer() trace.Tracer {
	if a.telemetry == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return a.telemetry.Tracer()
}

// closes reads the "4. close" values of the first points entries of the
// series object, in document order, and returns them oldest first. The API
// lists entries newest first.
func closes(body []byte, key string, points int) (models.PriceSeries, error) {
	var series gjson.Result
	gjson.ParseBytes(body).ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			series = v
			return false
		}
		return true
	})
	if !series.IsObject() {
		return nil, errs.NewInvalidPayloadError("Invalid historical data", key, apiNotice(body))
	}

	out := make(models.PriceSeries, 0, points)
	var parseErr error
	series.ForEach(func(stamp, entry gjson.Result) bool {
		if len(out) == points {
			return false
		}
		raw := entry.Get(`4\. close`)
		d, err := decimal.NewFromString(raw.String())
		if !raw.Exists() || err != nil {
			parseErr = errs.NewInvalidPayloadError("Invalid historical data", "4. close", stamp.String())
			return false
		}
		f, _ := d.Float64()
		out = append(out, f)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	slices.Reverse(out)
	return out, nil
}

func fixed2(s string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return d.StringFixed(2), nil
}

// apiNotice extracts the explanation Alpha Vantage sends with a 200 when it
// refuses a request (rate limits, bad symbols).
func apiNotice(body []byte) string {
	for _, key := range []string{"Note", "Information", "Error Message"} {
		if v := gjson.GetBytes(body, key); v.Exists() {
			return v.String()
		}
	}
	return ""
}
