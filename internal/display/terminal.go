// Package display renders a widget view for a terminal.
package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB"))

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	priceStyle = lipgloss.NewStyle().
			Bold(true)

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Blocks draws prices as a one-line block sparkline. Fewer than two points
// draw nothing.
func Blocks(prices []float64) string {
	if len(prices) < 2 {
		return ""
	}
	lo, hi := prices[0], prices[0]
	for _, p := range prices[1:] {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, p := range prices {
		i := int((p - lo) / span * float64(len(blocks)-1))
		b.WriteRune(blocks[i])
	}
	return b.String()
}

// Render lays the view out as a bordered card. prices backs the sparkline
// row once the view reports sparkline data.
func Render(view models.WidgetView, prices []float64) string {
	header := nameStyle.Render(orDash(view.CompanyName)) + " " + symbolStyle.Render(view.Symbol)

	lines := []string{header}
	switch {
	case view.Loading && !view.SpinnerError:
		lines = append(lines, mutedStyle.Render("loading…"))
	case view.SpinnerError:
		lines = append(lines, errorStyle.Render("✕"))
	default:
		change := view.Change
		switch view.Direction {
		case models.DirectionUp:
			change = upStyle.Render("▲ " + change)
		case models.DirectionDown:
			change = downStyle.Render("▼ " + change)
		}
		lines = append(lines, priceStyle.Render(view.Price)+"  "+change)
	}

	if view.SparklineHasData {
		style := upStyle
		if len(prices) > 1 && prices[len(prices)-1] < prices[0] {
			style = downStyle
		}
		lines = append(lines, style.Render(Blocks(prices)))
	}
	if view.Timestamp != "" {
		lines = append(lines, mutedStyle.Render(view.Timestamp))
	}
	if view.Error != "" {
		lines = append(lines, errorStyle.Render(view.Error))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
