package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

type prefixCipher struct{}

func (prefixCipher) Encrypt(_ context.Context, p string) (string, error) { return "enc:" + p, nil }
func (prefixCipher) Decrypt(_ context.Context, c string) (string, error) {
	return strings.TrimPrefix(c, "enc:"), nil
}

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWidgetStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewWidgetStore(client, prefixCipher{})

	reg := &models.WidgetRegistration{
		WidgetID: "w-store-1",
		Options: models.WidgetOptions{
			ContainerID: "stocks-widget",
			Symbol:      "AAPL",
			APIKey:      "secret",
			Sparkline:   "week",
		},
	}
	if err := store.Create(ctx, reg); err != nil {
		t.Fatalf("create error: %v", err)
	}
	t.Cleanup(func() { _ = store.Delete(ctx, reg.WidgetID) })

	raw, err := client.Collection("widgets").Doc(reg.WidgetID).Get(ctx)
	if err != nil {
		t.Fatalf("raw get error: %v", err)
	}
	if v, _ := raw.DataAt("apiKey"); v != "enc:secret" {
		t.Fatalf("expected encrypted key at rest, got %v", v)
	}

	find := func() *models.WidgetRegistration {
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list error: %v", err)
		}
		for _, r := range list {
			if r.WidgetID == reg.WidgetID {
				return r
			}
		}
		return nil
	}
	got := find()
	if got == nil {
		t.Fatalf("expected %s in list", reg.WidgetID)
	}
	if got.Options.APIKey != "secret" || got.Options.Symbol != "AAPL" {
		t.Fatalf("unexpected registration: %+v", got.Options)
	}

	if err := store.Delete(ctx, reg.WidgetID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if find() != nil {
		t.Fatal("expected registration gone after delete")
	}
}

func TestClickStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewClickStore(client)

	at := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	for i, sym := range []string{"MSFT", "AAPL"} {
		click := models.QuoteClick{Symbol: sym, URL: "https://finance.yahoo.com/quote/" + sym, ClickedAt: at.Add(time.Duration(i) * time.Minute)}
		if err := store.Record(ctx, "w-clicks-1", click); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	clicks, err := store.List(ctx, "w-clicks-1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(clicks) < 2 || clicks[0].Symbol != "MSFT" {
		t.Fatalf("unexpected clicks: %+v", clicks)
	}

	if err := store.DeleteAll(ctx, "w-clicks-1"); err != nil {
		t.Fatalf("delete all error: %v", err)
	}
	clicks, err = store.List(ctx, "w-clicks-1")
	if err != nil || len(clicks) != 0 {
		t.Fatalf("expected empty click log, got %+v (%v)", clicks, err)
	}
}
