package snapshot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

// formatDate renders a trading day as DD-MM-YYYY. Unparseable input is
// shown as received.
func formatDate(s string) string {
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02-01-2006")
		}
	}
	return s
}

// classifyChange is up for zero and positive changes. Non-numeric input is
// down.
func classifyChange(change string) models.Direction {
	d, err := decimal.NewFromString(change)
	if err != nil || d.IsNegative() {
		return models.DirectionDown
	}
	return models.DirectionUp
}
