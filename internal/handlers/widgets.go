package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/stocks-snapshot/internal/dto"
	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/middleware"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/response"
	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

type widgetService interface {
	Create(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*dto.WidgetStateResponse, error)
	List(ctx context.Context, uid string) []dto.WidgetSummary
	Get(ctx context.Context, uid, widgetID string) (*dto.WidgetStateResponse, error)
	RenderHTML(ctx context.Context, uid, widgetID string) (string, error)
	Chart(ctx context.Context, uid, widgetID string) ([]byte, error)
	Click(ctx context.Context, uid, widgetID string) (models.QuoteClick, error)
	Clicks(ctx context.Context, uid, widgetID string) ([]models.QuoteClick, error)
	Delete(ctx context.Context, uid, widgetID string) error
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       widgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.Post("/", h.CreateWidget)
	r.Get("/{widgetId}", h.GetWidget)
	r.Get("/{widgetId}/html", h.GetWidgetHTML)
	r.Get("/{widgetId}/chart.png", h.GetWidgetChart)
	r.Post("/{widgetId}/click", h.ClickWidget)
	r.Get("/{widgetId}/clicks", h.ListClicks)
	r.Delete("/{widgetId}", h.DeleteWidget)
	return r
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WidgetSvc.List(r.Context(), uid))
}

func (h *widgetHandlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	_, ctx := logger.With(r.Context(), "container_id", req.Options.ContainerID, "symbol", req.Options.Symbol)

	state, err := h.WidgetSvc.Create(ctx, uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, state)
}

func (h *widgetHandlers) GetWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	state, err := h.WidgetSvc.Get(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, state)
}

func (h *widgetHandlers) GetWidgetHTML(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	markup, err := h.WidgetSvc.RenderHTML(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteBytes(w, r, http.StatusOK, response.ContentTypeHTML, []byte(markup))
}

func (h *widgetHandlers) GetWidgetChart(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	img, err := h.WidgetSvc.Chart(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteBytes(w, r, http.StatusOK, response.ContentTypePNG, img)
}

func (h *widgetHandlers) ClickWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	click, err := h.WidgetSvc.Click(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, click)
}

func (h *widgetHandlers) ListClicks(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	clicks, err := h.WidgetSvc.Clicks(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, clicks)
}

func (h *widgetHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.WidgetSvc.Delete(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"widgetId": widgetID})
}
