package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	kms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/stocks-snapshot/internal/config"
	"github.com/GregMSThompson/stocks-snapshot/internal/telemetry"
	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

// Bootstrap holds process wide clients. Cloud clients are nil when no
// project is configured, so the server also runs fully in memory.
type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	SecretManager *secretmanager.Client
	KMS           *kms.KeyManagementClient
	Telemetry     *telemetry.Hooks

	shutdown []func(context.Context) error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	bs.Telemetry, err = bs.initTelemetry(applicationCtx, cfg)
	if err != nil {
		return bs, err
	}

	if !cfg.CloudEnabled() {
		bs.Log.Info("PROJECTID not set, running without cloud services")
		return bs, nil
	}

	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.addCloser(func(context.Context) error { return bs.Firestore.Close() })

	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	if cfg.AlphaVantageSecret != "" {
		bs.SecretManager, err = InitSecretManager(applicationCtx)
		if err != nil {
			return bs, err
		}
		bs.addCloser(func(context.Context) error { return bs.SecretManager.Close() })
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
		bs.addCloser(func(context.Context) error { return bs.KMS.Close() })
	}

	return bs, nil
}

func (bs *Bootstrap) addCloser(fn func(context.Context) error) {
	bs.shutdown = append(bs.shutdown, fn)
}

// Close releases clients in reverse order of creation.
func (bs *Bootstrap) Close() error {
	ctx := context.Background()
	var errList []error
	for i := len(bs.shutdown) - 1; i >= 0; i-- {
		if err := bs.shutdown[i](ctx); err != nil {
			errList = append(errList, err)
		}
	}
	bs.shutdown = nil
	return errors.Join(errList...)
}
