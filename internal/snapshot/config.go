package snapshot

import (
	"strings"
	"time"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

const (
	DefaultSymbol          = "MSFT"
	DefaultRefreshInterval = 60 * time.Second
)

// ResolveConfig validates raw options and fills defaults. The user theme
// replaces the default theme as a whole.
func ResolveConfig(opts models.WidgetOptions) (models.WidgetConfig, error) {
	if strings.TrimSpace(opts.ContainerID) == "" {
		return models.WidgetConfig{}, errs.NewConfigError("containerId", "containerId is required")
	}
	if opts.RefreshInterval < 0 {
		return models.WidgetConfig{}, errs.NewConfigError("refreshInterval", "refreshInterval must be a positive number of milliseconds")
	}

	cfg := models.WidgetConfig{
		ContainerID:     opts.ContainerID,
		Symbol:          DefaultSymbol,
		APIKey:          opts.APIKey,
		FontURL:         opts.FontURL,
		RefreshInterval: DefaultRefreshInterval,
		Theme:           map[string]string{},
		Sparkline:       parseSparkline(opts.Sparkline),
	}
	if opts.Symbol != "" {
		cfg.Symbol = opts.Symbol
	}
	if opts.RefreshInterval > 0 {
		cfg.RefreshInterval = time.Duration(opts.RefreshInterval) * time.Millisecond
	}
	if opts.Theme != nil {
		theme := make(map[string]string, len(opts.Theme))
		for k, v := range opts.Theme {
			theme[k] = v
		}
		cfg.Theme = theme
	}
	return cfg, nil
}

func parseSparkline(v any) models.SparklineMode {
	s, ok := v.(string)
	if !ok {
		return models.SparklineOff
	}
	switch strings.ToLower(s) {
	case string(models.SparklineWeek):
		return models.SparklineWeek
	case string(models.SparklineHourly):
		return models.SparklineHourly
	default:
		return models.SparklineOff
	}
}
