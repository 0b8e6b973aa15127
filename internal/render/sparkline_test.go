package render

import (
	"strings"
	"testing"
)

func TestSparkline_TooFewPoints(t *testing.T) {
	if got := Sparkline(nil, SparklineOptions{}); got != "" {
		t.Fatalf("expected empty markup, got %q", got)
	}
	if got := Sparkline([]float64{1}, SparklineOptions{}); got != "" {
		t.Fatalf("expected empty markup, got %q", got)
	}
}

func TestSparkline_ScalesPoints(t *testing.T) {
	got := Sparkline([]float64{1, 2, 3}, SparklineOptions{})

	if !strings.Contains(got, `points="0,30 60,15 120,0"`) {
		t.Fatalf("unexpected points in %q", got)
	}
	if !strings.Contains(got, `width="120" height="30" viewBox="0 0 120 30"`) {
		t.Fatalf("unexpected box in %q", got)
	}
	if !strings.Contains(got, `stroke="currentColor" stroke-width="2"`) {
		t.Fatalf("unexpected stroke in %q", got)
	}
}

func TestSparkline_FlatSeries(t *testing.T) {
	got := Sparkline([]float64{5, 5}, SparklineOptions{Width: 10, Height: 10, Stroke: "red"})

	if !strings.Contains(got, `points="0,10 10,10"`) {
		t.Fatalf("flat series should sit on the baseline, got %q", got)
	}
	if !strings.Contains(got, `stroke="red"`) {
		t.Fatalf("custom stroke not applied: %q", got)
	}
}

func TestSparklineStroke(t *testing.T) {
	if SparklineStroke(1, 1) != "var(--stocks-up-color)" {
		t.Fatal("equal ends should be up")
	}
	if SparklineStroke(2, 1) != "var(--stocks-down-color)" {
		t.Fatal("falling series should be down")
	}
}
