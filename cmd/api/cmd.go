package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/stocks-snapshot/internal/bootstrap"
	avclient "github.com/GregMSThompson/stocks-snapshot/internal/client/alphavantage"
	"github.com/GregMSThompson/stocks-snapshot/internal/config"
	"github.com/GregMSThompson/stocks-snapshot/internal/crypto"
	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/internal/handlers"
	"github.com/GregMSThompson/stocks-snapshot/internal/response"
	"github.com/GregMSThompson/stocks-snapshot/internal/router"
	"github.com/GregMSThompson/stocks-snapshot/internal/services"
	"github.com/GregMSThompson/stocks-snapshot/internal/snapshot"
	"github.com/GregMSThompson/stocks-snapshot/internal/store"
)

const shutdownTimeout = 10 * time.Second

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx := context.Background()

	// market data
	market := avclient.NewAdapter(bs.Log, cfg.AlphaVantageURL, cfg.AlphaVantageTimeout, bs.Telemetry)

	svcCfg := services.WidgetServiceConfig{
		DefaultKey: cfg.AlphaVantageKey,
		Options: []snapshot.Option{
			snapshot.WithLogger(bs.Log),
			snapshot.WithMarketData(market),
			snapshot.WithTelemetry(bs.Telemetry),
			snapshot.WithPacing(snapshot.FixedPacing(cfg.PacingDelay)),
			snapshot.WithIdleScheduler(snapshot.GoIdle),
		},
	}

	// stores
	if bs.SecretManager != nil {
		key, err := store.NewAPIKeySource(bs.SecretManager, cfg.ProjectID, cfg.AlphaVantageSecret).APIKey(ctx)
		if err != nil {
			bs.Log.Warn("default api key secret unavailable", "secret", cfg.AlphaVantageSecret, "error", errs.Describe(err))
		} else {
			svcCfg.DefaultKey = key
		}
	}
	if bs.Firestore != nil {
		if bs.KMS != nil {
			svcCfg.Store = store.NewWidgetStore(bs.Firestore, crypto.NewKMS(bs.KMS, cfg.KMSKeyName))
		} else {
			svcCfg.Store = store.NewWidgetStore(bs.Firestore, nil)
		}
		svcCfg.Clicks = store.NewClickStore(bs.Firestore)
	}

	// services
	wserv := services.NewWidgetService(bs.Log, svcCfg)
	defer wserv.Close()
	if _, err := wserv.Restore(ctx); err != nil {
		bs.Log.Warn("widget restore failed", "error", errs.Describe(err))
	}

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WidgetSvc = wserv
	deps.PageAPIKey = svcCfg.DefaultKey
	deps.FontURL = cfg.FontURL
	deps.StaticDir = cfg.StaticDir

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	exitOnError("server start failed", err, bs.Log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	bs.Log.Info("server listening", "port", cfg.Port)
	if err := serve(srv, ln, stop); err != nil {
		bs.Log.Error("server stopped", "error", err)
	}
}

// serve runs srv on ln until stop fires and returns once open connections
// have drained or the shutdown timeout expires.
func serve(srv *http.Server, ln net.Listener, stop <-chan os.Signal) error {
	drained := make(chan error, 1)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		drained <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-drained
}
