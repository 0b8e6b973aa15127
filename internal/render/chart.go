package render

import (
	"fmt"
	"strconv"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

const (
	chartWidth  = 600
	chartHeight = 300
)

// ChartPNG renders the series as a full-size line chart for hosts that
// cannot run the widget script.
func ChartPNG(symbol string, series models.PriceSeries) ([]byte, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("chart needs at least 2 points, got %d", len(series))
	}

	labels := make([]string, len(series))
	for i := range series {
		labels[i] = strconv.Itoa(i + 1)
	}

	trend := "up"
	if series.Last() < series.First() {
		trend = "down"
	}

	p, err := charts.LineRender(
		[][]float64{series},
		charts.TitleTextOptionFunc(symbol, trend),
		charts.XAxisDataOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}
