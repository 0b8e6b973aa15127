package models

import (
	"time"
)

// SparklineMode selects which history series backs the sparkline.
type SparklineMode string

const (
	SparklineOff    SparklineMode = ""
	SparklineWeek   SparklineMode = "week"
	SparklineHourly SparklineMode = "hourly"
)

// Enabled reports whether a sparkline should be fetched and drawn.
func (m SparklineMode) Enabled() bool {
	return m == SparklineWeek || m == SparklineHourly
}

// WidgetOptions is the raw, user supplied widget configuration. Sparkline
// accepts any JSON value; only "week" and "hourly" (any case) enable it.
type WidgetOptions struct {
	ContainerID     string            `json:"containerId" firestore:"containerId"`
	Symbol          string            `json:"symbol,omitempty" firestore:"symbol,omitempty"`
	APIKey          string            `json:"apiKey,omitempty" firestore:"-"`
	FontURL         string            `json:"fontUrl,omitempty" firestore:"fontUrl,omitempty"`
	RefreshInterval int64             `json:"refreshInterval,omitempty" firestore:"refreshInterval,omitempty"`
	Theme           map[string]string `json:"theme,omitempty" firestore:"theme,omitempty"`
	Sparkline       any               `json:"sparkline,omitempty" firestore:"sparkline,omitempty"`
}

// WidgetConfig is the resolved configuration. It is immutable once handed
// to a widget.
type WidgetConfig struct {
	ContainerID     string            `json:"containerId"`
	Symbol          string            `json:"symbol"`
	APIKey          string            `json:"-"`
	FontURL         string            `json:"fontUrl,omitempty"`
	RefreshInterval time.Duration     `json:"refreshInterval"`
	Theme           map[string]string `json:"theme"`
	Sparkline       SparklineMode     `json:"sparkline"`
}

// Options maps a resolved config back to raw options, so resolving it again
// yields the same config.
func (c WidgetConfig) Options() WidgetOptions {
	theme := make(map[string]string, len(c.Theme))
	for k, v := range c.Theme {
		theme[k] = v
	}
	var sparkline any = false
	if c.Sparkline.Enabled() {
		sparkline = string(c.Sparkline)
	}
	return WidgetOptions{
		ContainerID:     c.ContainerID,
		Symbol:          c.Symbol,
		APIKey:          c.APIKey,
		FontURL:         c.FontURL,
		RefreshInterval: c.RefreshInterval.Milliseconds(),
		Theme:           theme,
		Sparkline:       sparkline,
	}
}

// WidgetRegistration is a live widget persisted in Firestore so the server
// can restore it on boot.
type WidgetRegistration struct {
	WidgetID        string        `firestore:"widgetId" json:"widgetId"`
	OwnerUID        string        `firestore:"ownerUid,omitempty" json:"ownerUid,omitempty"`
	Options         WidgetOptions `firestore:"options" json:"options"`
	EncryptedAPIKey string        `firestore:"apiKey,omitempty" json:"-"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `firestore:"updatedAt" json:"updatedAt"`
}

// QuoteClick is the payload of the quoteClick event.
type QuoteClick struct {
	Symbol    string    `firestore:"symbol" json:"symbol"`
	URL       string    `firestore:"url" json:"url"`
	ClickedAt time.Time `firestore:"clickedAt" json:"clickedAt"`
}
