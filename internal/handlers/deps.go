package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/stocks-snapshot/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	WidgetSvc       widgetService

	// SSR page defaults
	PageAPIKey string
	FontURL    string
	StaticDir  string
}
