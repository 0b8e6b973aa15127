package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

type clickStore struct {
	client *firestore.Client
}

// NewClickStore appends quote clicks under widgets/{id}/quote_clicks.
func NewClickStore(client *firestore.Client) *clickStore {
	return &clickStore{client: client}
}

func (s *clickStore) collection(widgetID string) *firestore.CollectionRef {
	return s.client.Collection("widgets").Doc(widgetID).Collection("quote_clicks")
}

func (s *clickStore) Record(ctx context.Context, widgetID string, click models.QuoteClick) error {
	_, _, err := s.collection(widgetID).Add(ctx, click)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to record quote click", err)
	}
	return nil
}

func (s *clickStore) List(ctx context.Context, widgetID string) ([]models.QuoteClick, error) {
	docs, err := s.collection(widgetID).OrderBy("clickedAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list quote clicks", err)
	}
	clicks := make([]models.QuoteClick, 0, len(docs))
	for _, d := range docs {
		var c models.QuoteClick
		if err := d.DataTo(&c); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse quote click", err)
		}
		clicks = append(clicks, c)
	}
	return clicks, nil
}

// DeleteAll removes the click log of a widget.
func (s *clickStore) DeleteAll(ctx context.Context, widgetID string) error {
	refs, err := s.collection(widgetID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("read", "failed to list quote clicks", err)
	}
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("delete", "failed to schedule quote click delete", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errs.NewDatabaseError("delete", "failed to delete quote click", err)
		}
	}
	return nil
}
