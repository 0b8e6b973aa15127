package dto

import (
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

// CreateWidgetRequest mounts a widget. HostStyle seeds the container's
// computed style, which the widget inherits for allow-listed variables.
type CreateWidgetRequest struct {
	Options   models.WidgetOptions `json:"options"`
	HostStyle map[string]string    `json:"hostStyle,omitempty"`
}

type WidgetStateResponse struct {
	WidgetID string               `json:"widgetId"`
	State    string               `json:"state"`
	Config   models.WidgetOptions `json:"config"`
	View     models.WidgetView    `json:"view"`
	Style    map[string]string    `json:"style,omitempty"`
	Prices   []float64            `json:"prices,omitempty"`
}

type WidgetSummary struct {
	WidgetID    string `json:"widgetId"`
	ContainerID string `json:"containerId"`
	Symbol      string `json:"symbol"`
	State       string `json:"state"`
}

type RestoreResult struct {
	Restored int `json:"restored"`
	Failed   int `json:"failed"`
}
