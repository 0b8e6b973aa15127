package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/stocks-snapshot/internal/dto"
	"github.com/GregMSThompson/stocks-snapshot/internal/middleware"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	writeBytesCalled      bool
	writeBytesStatus      int
	writeBytesContentType string
	writeBytesBody        []byte

	handleErrorCalled bool
	handleError       error

	errorWriteCalled bool
	errorWriteStatus int
	errorWriteCode   string
	errorWriteMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteBytes(w http.ResponseWriter, _ *http.Request, status int, contentType string, body []byte) {
	s.writeBytesCalled = true
	s.writeBytesStatus = status
	s.writeBytesContentType = contentType
	s.writeBytesBody = body
	w.WriteHeader(status)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.errorWriteCalled = true
	s.errorWriteStatus = status
	s.errorWriteCode = code
	s.errorWriteMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

type stubWidgetService struct {
	createResp *dto.WidgetStateResponse
	createErr  error
	lastCreate dto.CreateWidgetRequest
	lastUID    string

	listResp []dto.WidgetSummary

	getResp *dto.WidgetStateResponse
	getErr  error
	lastID  string

	html    string
	htmlErr error

	chart    []byte
	chartErr error

	click    models.QuoteClick
	clickErr error

	clicks    []models.QuoteClick
	clicksErr error

	deleteErr error
}

func (s *stubWidgetService) Create(_ context.Context, uid string, req dto.CreateWidgetRequest) (*dto.WidgetStateResponse, error) {
	s.lastUID = uid
	s.lastCreate = req
	return s.createResp, s.createErr
}

func (s *stubWidgetService) List(_ context.Context, uid string) []dto.WidgetSummary {
	s.lastUID = uid
	return s.listResp
}

func (s *stubWidgetService) Get(_ context.Context, uid, id string) (*dto.WidgetStateResponse, error) {
	s.lastUID, s.lastID = uid, id
	return s.getResp, s.getErr
}

func (s *stubWidgetService) RenderHTML(_ context.Context, uid, id string) (string, error) {
	s.lastUID, s.lastID = uid, id
	return s.html, s.htmlErr
}

func (s *stubWidgetService) Chart(_ context.Context, uid, id string) ([]byte, error) {
	s.lastUID, s.lastID = uid, id
	return s.chart, s.chartErr
}

func (s *stubWidgetService) Click(_ context.Context, uid, id string) (models.QuoteClick, error) {
	s.lastUID, s.lastID = uid, id
	return s.click, s.clickErr
}

func (s *stubWidgetService) Clicks(_ context.Context, uid, id string) ([]models.QuoteClick, error) {
	s.lastUID, s.lastID = uid, id
	return s.clicks, s.clicksErr
}

func (s *stubWidgetService) Delete(_ context.Context, uid, id string) error {
	s.lastUID, s.lastID = uid, id
	return s.deleteErr
}

// withUID injects a UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}
