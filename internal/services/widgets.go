package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/GregMSThompson/stocks-snapshot/internal/dto"
	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/render"
	"github.com/GregMSThompson/stocks-snapshot/internal/snapshot"
	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

// prerenderFont is the font stack of the server rendered shell.
const prerenderFont = "Inter, system-ui, sans-serif"

// widgetStore persists registrations so widgets survive a restart.
type widgetStore interface {
	Create(ctx context.Context, reg *models.WidgetRegistration) error
	List(ctx context.Context) ([]*models.WidgetRegistration, error)
	Delete(ctx context.Context, widgetID string) error
}

// clickLog keeps the quote clicks of each widget.
type clickLog interface {
	Record(ctx context.Context, widgetID string, click models.QuoteClick) error
	List(ctx context.Context, widgetID string) ([]models.QuoteClick, error)
	DeleteAll(ctx context.Context, widgetID string) error
}

// hostedWidget is mounted into a document container keyed by its widget id;
// containerID is the id the owner asked for and is only unique per owner.
type hostedWidget struct {
	widget      *snapshot.Widget
	containerID string
	owner       string
	unsubscribe func()
}

type containerKey struct {
	owner       string
	containerID string
}

type widgetService struct {
	log        *slog.Logger
	doc        *snapshot.Document
	store      widgetStore
	clicks     clickLog
	defaultKey string
	opts       []snapshot.Option

	mu         sync.Mutex
	widgets    map[string]*hostedWidget
	containers map[containerKey]string
}

// WidgetServiceConfig carries optional collaborators. Nil stores keep
// everything in memory.
type WidgetServiceConfig struct {
	Store      widgetStore
	Clicks     clickLog
	DefaultKey string
	Options    []snapshot.Option
}

func NewWidgetService(log *slog.Logger, cfg WidgetServiceConfig) *widgetService {
	return &widgetService{
		log:        log,
		doc:        snapshot.NewDocument(),
		store:      cfg.Store,
		clicks:     cfg.Clicks,
		defaultKey: cfg.DefaultKey,
		opts:       cfg.Options,
		widgets:    map[string]*hostedWidget{},
		containers: map[containerKey]string{},
	}
}

// Create prerenders a container, mounts a widget into it and persists the
// registration. The supplied API key is persisted; the server default is not.
func (s *widgetService) Create(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*dto.WidgetStateResponse, error) {
	reg := &models.WidgetRegistration{
		WidgetID: uuid.NewString(),
		OwnerUID: uid,
		Options:  req.Options,
	}
	hw, err := s.mount(ctx, reg, req.HostStyle)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Create(ctx, reg); err != nil {
			s.remove(reg.WidgetID)
			return nil, err
		}
	}

	logger.FromContext(ctx).Info("widget created", "widget_id", reg.WidgetID, "symbol", hw.widget.FetchRequest().Symbol)
	return s.state(reg.WidgetID, hw), nil
}

func (s *widgetService) mount(ctx context.Context, reg *models.WidgetRegistration, hostStyle map[string]string) (*hostedWidget, error) {
	raw := reg.Options
	if raw.APIKey == "" {
		raw.APIKey = s.defaultKey
	}
	cfg, err := snapshot.ResolveConfig(raw)
	if err != nil {
		return nil, err
	}

	key := containerKey{owner: reg.OwnerUID, containerID: cfg.ContainerID}
	if err := s.reserve(key, reg.WidgetID); err != nil {
		return nil, err
	}
	release := func() {
		s.mu.Lock()
		delete(s.containers, key)
		s.mu.Unlock()
	}

	elementID := reg.WidgetID
	container := snapshot.NewContainer(elementID, hostStyle)
	if err := s.doc.Add(container); err != nil {
		release()
		return nil, err
	}
	shell, err := render.PrerenderShell(cfg.Symbol, prerenderFont)
	if err != nil {
		s.doc.Remove(elementID)
		release()
		return nil, err
	}
	container.SetInnerHTML(string(shell))

	raw.ContainerID = elementID
	opts := append(slices.Clone(s.opts), snapshot.WithID(reg.WidgetID))
	w, err := snapshot.Mount(ctx, s.doc, raw, opts...)
	if err != nil {
		s.doc.Remove(elementID)
		release()
		return nil, err
	}

	hw := &hostedWidget{widget: w, containerID: cfg.ContainerID, owner: reg.OwnerUID}
	if s.clicks != nil {
		widgetID := reg.WidgetID
		hw.unsubscribe = w.OnQuoteClick(func(click models.QuoteClick) {
			if err := s.clicks.Record(context.WithoutCancel(ctx), widgetID, click); err != nil {
				s.log.Warn("failed to record quote click", "widget_id", widgetID, "error", errs.Describe(err))
			}
		})
	}

	s.mu.Lock()
	s.widgets[reg.WidgetID] = hw
	s.mu.Unlock()
	return hw, nil
}

// reserve claims an owner's container id for widgetID.
func (s *widgetService) reserve(key containerKey, widgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.containers[key]; taken {
		return errs.NewAlreadyExistsError(fmt.Sprintf("Container #%s already exists", key.containerID))
	}
	s.containers[key] = widgetID
	return nil
}

func (s *widgetService) lookup(uid, widgetID string) (*hostedWidget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hw, ok := s.widgets[widgetID]
	if !ok || (hw.owner != "" && hw.owner != uid) {
		return nil, errs.NewNotFoundError("widget not found")
	}
	return hw, nil
}

func (s *widgetService) List(_ context.Context, uid string) []dto.WidgetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.WidgetSummary, 0, len(s.widgets))
	for id, hw := range s.widgets {
		if hw.owner != "" && hw.owner != uid {
			continue
		}
		out = append(out, dto.WidgetSummary{
			WidgetID:    id,
			ContainerID: hw.containerID,
			Symbol:      hw.widget.FetchRequest().Symbol,
			State:       hw.widget.State().String(),
		})
	}
	slices.SortFunc(out, func(a, b dto.WidgetSummary) int {
		if a.ContainerID < b.ContainerID {
			return -1
		}
		if a.ContainerID > b.ContainerID {
			return 1
		}
		return 0
	})
	return out
}

func (s *widgetService) Get(_ context.Context, uid, widgetID string) (*dto.WidgetStateResponse, error) {
	hw, err := s.lookup(uid, widgetID)
	if err != nil {
		return nil, err
	}
	return s.state(widgetID, hw), nil
}

func (s *widgetService) state(widgetID string, hw *hostedWidget) *dto.WidgetStateResponse {
	w := hw.widget
	resp := &dto.WidgetStateResponse{
		WidgetID: widgetID,
		State:    w.State().String(),
		View:     w.View(),
		Style:    w.Style(),
		Prices:   w.Prices(),
	}
	if cfg, ok := w.Config(); ok {
		resp.Config = cfg.Options()
		resp.Config.APIKey = ""
		resp.Config.ContainerID = hw.containerID
	}
	return resp
}

// RenderHTML returns the container markup with the widget's current frame.
func (s *widgetService) RenderHTML(_ context.Context, uid, widgetID string) (string, error) {
	hw, err := s.lookup(uid, widgetID)
	if err != nil {
		return "", err
	}
	container, ok := s.doc.GetElementByID(widgetID)
	if !ok {
		return "", errs.NewNotFoundError(fmt.Sprintf("Container #%s not found", hw.containerID))
	}
	return container.HTMLAs(hw.containerID)
}

// Chart draws the captured sparkline series as a PNG.
func (s *widgetService) Chart(_ context.Context, uid, widgetID string) ([]byte, error) {
	hw, err := s.lookup(uid, widgetID)
	if err != nil {
		return nil, err
	}
	prices := hw.widget.Prices()
	if len(prices) < 2 {
		return nil, errs.NewValidationError("price history not loaded")
	}
	return render.ChartPNG(hw.widget.FetchRequest().Symbol, prices)
}

func (s *widgetService) Click(_ context.Context, uid, widgetID string) (models.QuoteClick, error) {
	hw, err := s.lookup(uid, widgetID)
	if err != nil {
		return models.QuoteClick{}, err
	}
	click, ok := hw.widget.ClickSymbol()
	if !ok {
		return models.QuoteClick{}, errs.NewValidationError("symbol is not clickable until the company name loads")
	}
	return click, nil
}

// Clicks returns the recorded quote clicks, oldest first.
func (s *widgetService) Clicks(ctx context.Context, uid, widgetID string) ([]models.QuoteClick, error) {
	if _, err := s.lookup(uid, widgetID); err != nil {
		return nil, err
	}
	if s.clicks == nil {
		return []models.QuoteClick{}, nil
	}
	return s.clicks.List(ctx, widgetID)
}

// Delete detaches the widget and drops its registration and click log.
func (s *widgetService) Delete(ctx context.Context, uid, widgetID string) error {
	if _, err := s.lookup(uid, widgetID); err != nil {
		return err
	}
	s.remove(widgetID)
	if s.store != nil {
		if err := s.store.Delete(ctx, widgetID); err != nil {
			return err
		}
	}
	if s.clicks != nil {
		return s.clicks.DeleteAll(ctx, widgetID)
	}
	return nil
}

// remove detaches the widget and drops its container.
func (s *widgetService) remove(widgetID string) {
	s.mu.Lock()
	hw, ok := s.widgets[widgetID]
	delete(s.widgets, widgetID)
	if ok {
		delete(s.containers, containerKey{owner: hw.owner, containerID: hw.containerID})
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if hw.unsubscribe != nil {
		hw.unsubscribe()
	}
	s.doc.Remove(widgetID)
}

// Restore re-mounts persisted widgets. A registration that cannot be
// mounted is logged and skipped.
func (s *widgetService) Restore(ctx context.Context) (dto.RestoreResult, error) {
	var result dto.RestoreResult
	if s.store == nil {
		return result, nil
	}
	regs, err := s.store.List(ctx)
	if err != nil {
		return result, err
	}
	for _, reg := range regs {
		if _, err := s.mount(ctx, reg, nil); err != nil {
			result.Failed++
			s.log.Warn("failed to restore widget",
				"widget_id", reg.WidgetID,
				"container_id", reg.Options.ContainerID,
				"error", errs.Describe(err))
			continue
		}
		result.Restored++
	}
	s.log.Info("widgets restored", "restored", result.Restored, "failed", result.Failed)
	return result, nil
}

// Close detaches every hosted widget. Registrations stay persisted.
func (s *widgetService) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.widgets))
	for id := range s.widgets {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.remove(id)
	}
	s.log.Info("widgets closed", "count", len(ids))
}
