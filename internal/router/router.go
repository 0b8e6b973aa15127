package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/stocks-snapshot/internal/handlers"
	"github.com/GregMSThompson/stocks-snapshot/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	hh := handlers.NewHealthHandlers(deps)
	ph := handlers.NewPrerenderHandlers(deps)
	wh := handlers.NewWidgetHandlers(deps)

	r.Get("/health", hh.Health)
	r.Get("/widget", ph.Widget)
	if deps.StaticDir != "" {
		r.Handle("/stocks.bundle.js", http.FileServer(http.Dir(deps.StaticDir)))
	}

	r.Group(func(r chi.Router) {
		if deps.Firebase != nil {
			r.Use(middleware.NewMiddleware(deps.Firebase).FirebaseAuth)
		}
		r.Mount("/widgets", wh.WidgetRoutes())
	})
	return r
}
