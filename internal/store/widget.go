package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

type keyCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type widgetStore struct {
	client *firestore.Client
	cipher keyCipher
}

// NewWidgetStore persists widget registrations. With a nil cipher the API
// key is never written; restored widgets fall back to the server key.
func NewWidgetStore(client *firestore.Client, cipher keyCipher) *widgetStore {
	return &widgetStore{client: client, cipher: cipher}
}

func (s *widgetStore) collection() *firestore.CollectionRef {
	return s.client.Collection("widgets")
}

func (s *widgetStore) Create(ctx context.Context, reg *models.WidgetRegistration) error {
	now := time.Now()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now

	doc := *reg
	doc.EncryptedAPIKey = ""
	if s.cipher != nil && reg.Options.APIKey != "" {
		ct, err := s.cipher.Encrypt(ctx, reg.Options.APIKey)
		if err != nil {
			return err
		}
		doc.EncryptedAPIKey = ct
	}

	_, err := s.collection().Doc(reg.WidgetID).Set(ctx, doc)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create widget", err)
	}
	return nil
}

func (s *widgetStore) List(ctx context.Context) ([]*models.WidgetRegistration, error) {
	docs, err := s.collection().OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list widgets", err)
	}
	regs := make([]*models.WidgetRegistration, 0, len(docs))
	for _, d := range docs {
		reg, err := s.decode(ctx, d)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (s *widgetStore) Delete(ctx context.Context, widgetID string) error {
	_, err := s.collection().Doc(widgetID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete widget", err)
	}
	return nil
}

func (s *widgetStore) decode(ctx context.Context, doc *firestore.DocumentSnapshot) (*models.WidgetRegistration, error) {
	var reg models.WidgetRegistration
	if err := doc.DataTo(&reg); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	if s.cipher != nil && reg.EncryptedAPIKey != "" {
		key, err := s.cipher.Decrypt(ctx, reg.EncryptedAPIKey)
		if err != nil {
			return nil, err
		}
		reg.Options.APIKey = key
	}
	return &reg, nil
}
