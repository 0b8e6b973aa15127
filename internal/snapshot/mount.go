package snapshot

import (
	"context"
	"fmt"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

// Mount resolves raw options, finds the container, registers the widget
// element if needed and attaches a new widget in place of the container's
// contents.
func Mount(ctx context.Context, doc *Document, raw models.WidgetOptions, opts ...Option) (*Widget, error) {
	cfg, err := ResolveConfig(raw)
	if err != nil {
		return nil, err
	}

	container, ok := doc.GetElementByID(cfg.ContainerID)
	if !ok {
		return nil, errs.NewNotFoundError(fmt.Sprintf("Container #%s not found", cfg.ContainerID))
	}

	Define(TagName, New)
	factory, _ := Lookup(TagName)

	w := factory(opts...)
	w.SetConfig(cfg)
	if err := container.Replace(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
