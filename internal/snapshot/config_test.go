package snapshot

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := ResolveConfig(models.WidgetOptions{ContainerID: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.WidgetConfig{
		ContainerID:     "x",
		Symbol:          "MSFT",
		RefreshInterval: 60 * time.Second,
		Theme:           map[string]string{},
		Sparkline:       models.SparklineOff,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestResolveConfig_UserValuesWin(t *testing.T) {
	theme := map[string]string{"up-color": "green"}
	cfg, err := ResolveConfig(models.WidgetOptions{
		ContainerID:     "x",
		Symbol:          "IBM",
		APIKey:          "k",
		FontURL:         "https://fonts.example/a.css",
		RefreshInterval: 5000,
		Theme:           theme,
		Sparkline:       "week",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Symbol != "IBM" || cfg.APIKey != "k" || cfg.RefreshInterval != 5*time.Second || cfg.Sparkline != models.SparklineWeek {
		t.Fatalf("unexpected config %+v", cfg)
	}

	theme["up-color"] = "red"
	if cfg.Theme["up-color"] != "green" {
		t.Fatal("resolved theme must not alias the caller's map")
	}
}

func TestResolveConfig_Sparkline(t *testing.T) {
	tests := []struct {
		in   any
		want models.SparklineMode
	}{
		{"HOURLY", models.SparklineHourly},
		{"Week", models.SparklineWeek},
		{"monthly", models.SparklineOff},
		{false, models.SparklineOff},
		{true, models.SparklineOff},
		{1, models.SparklineOff},
		{nil, models.SparklineOff},
	}
	for _, tc := range tests {
		cfg, err := ResolveConfig(models.WidgetOptions{ContainerID: "x", Sparkline: tc.in})
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", tc.in, err)
		}
		if cfg.Sparkline != tc.want {
			t.Errorf("sparkline %v: got %q, want %q", tc.in, cfg.Sparkline, tc.want)
		}
	}
}

func TestResolveConfig_MissingContainer(t *testing.T) {
	_, err := ResolveConfig(models.WidgetOptions{Symbol: "IBM"})

	var ce *errs.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %T %v", err, err)
	}
	if ce.Field != "containerId" {
		t.Fatalf("unexpected field %q", ce.Field)
	}
}

func TestResolveConfig_BlankContainer(t *testing.T) {
	_, err := ResolveConfig(models.WidgetOptions{ContainerID: "  \t"})

	var ce *errs.ConfigError
	if !errors.As(err, &ce) || ce.Field != "containerId" {
		t.Fatalf("expected containerId ConfigError, got %v", err)
	}
}

func TestResolveConfig_NegativeInterval(t *testing.T) {
	_, err := ResolveConfig(models.WidgetOptions{ContainerID: "x", RefreshInterval: -1})

	var ce *errs.ConfigError
	if !errors.As(err, &ce) || ce.Field != "refreshInterval" {
		t.Fatalf("expected refreshInterval ConfigError, got %v", err)
	}
}

func TestResolveConfig_Idempotent(t *testing.T) {
	inputs := []models.WidgetOptions{
		{ContainerID: "x"},
		{ContainerID: "x", Symbol: "IBM", RefreshInterval: 1500, Sparkline: "Hourly", Theme: map[string]string{"bg-color": "#000"}},
		{ContainerID: "x", Sparkline: "nope", FontURL: "f"},
	}
	for _, in := range inputs {
		first, err := ResolveConfig(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := ResolveConfig(first.Options())
		if err != nil {
			t.Fatalf("unexpected error on second resolve: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("resolve is not idempotent: %+v vs %+v", first, second)
		}
	}
}
