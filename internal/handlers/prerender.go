package handlers

import (
	"net/http"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/render"
	"github.com/GregMSThompson/stocks-snapshot/internal/response"
	"github.com/GregMSThompson/stocks-snapshot/internal/snapshot"
)

const (
	defaultShellFont   = "Inter, system-ui, sans-serif"
	defaultThemeFont   = "Inter, sans-serif"
	defaultContainerID = "stocks-widget"
)

type prerenderHandlers struct {
	ResponseHandler response.ResponseHandler
	APIKey          string
	FontURL         string
}

func NewPrerenderHandlers(deps *Deps) *prerenderHandlers {
	return &prerenderHandlers{
		ResponseHandler: deps.ResponseHandler,
		APIKey:          deps.PageAPIKey,
		FontURL:         deps.FontURL,
	}
}

// Widget serves the SSR page: a spinner shell inside the container and the
// bootstrap script that mounts the client widget over it.
func (h *prerenderHandlers) Widget(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = snapshot.DefaultSymbol
	}
	font := q.Get("font")
	if font == "" {
		font = defaultShellFont
	}

	shell, err := render.PrerenderShell(symbol, font)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	page, err := render.Page(render.PageData{
		FontURL: h.FontURL,
		Shell:   shell,
		Options: models.WidgetOptions{
			ContainerID: defaultContainerID,
			Symbol:      symbol,
			APIKey:      h.APIKey,
			FontURL:     h.FontURL,
			Theme:       map[string]string{"font-family": defaultThemeFont},
			Sparkline:   string(models.SparklineWeek),
		},
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteBytes(w, r, http.StatusOK, response.ContentTypeHTML, page)
}
