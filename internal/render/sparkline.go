package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type SparklineOptions struct {
	Width       float64
	Height      float64
	Stroke      string
	StrokeWidth float64
}

func (o SparklineOptions) withDefaults() SparklineOptions {
	if o.Width <= 0 {
		o.Width = 120
	}
	if o.Height <= 0 {
		o.Height = 30
	}
	if o.Stroke == "" {
		o.Stroke = "currentColor"
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 2
	}
	return o
}

// Sparkline renders values as an inline SVG polyline scaled to the box.
// Fewer than two values render nothing.
func Sparkline(values []float64, opts SparklineOptions) string {
	if len(values) < 2 {
		return ""
	}
	opts = opts.withDefaults()

	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	points := make([]string, len(values))
	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * opts.Width
		y := opts.Height - (v-lo)/span*opts.Height
		points[i] = num(x) + "," + num(y)
	}

	w, h := num(opts.Width), num(opts.Height)
	return fmt.Sprintf(
		`<svg width="%s" height="%s" viewBox="0 0 %s %s" aria-hidden="true" focusable="false">`+
			`<polyline fill="none" stroke="%s" stroke-width="%s" points="%s" stroke-linecap="round" stroke-linejoin="round"/>`+
			`</svg>`,
		w, h, w, h, attr(opts.Stroke), num(opts.StrokeWidth), strings.Join(points, " "))
}

// SparklineStroke picks the trend colour variable for a series.
func SparklineStroke(first, last float64) string {
	if last >= first {
		return "var(--stocks-up-color)"
	}
	return "var(--stocks-down-color)"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func attr(s string) string {
	return attrEscaper.Replace(s)
}
