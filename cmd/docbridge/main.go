// Command docbridge serves the ONLYOFFICE Document Server integration
// endpoints on top of object storage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"

	"github.com/rise-and-shine/docbridge/cfgloader"
	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/editor"
	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/http/server/middleware"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/alert"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

func main() {
	configDir := pflag.String("config-dir", "", "directory holding ${ENVIRONMENT}.yaml (default ./config)")
	pflag.Parse()

	cfg := cfgloader.MustLoad[Config](cfgloader.WithConfigDir(*configDir))

	logger.SetGlobal(cfg.Logger)
	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)

	if err := run(cfg); err != nil {
		logger.Named("main").Errorx(err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(); err != nil {
			log.Errorx(err)
		}
	}()

	if err = alert.SetGlobal(cfg.Alert); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorx(err)
		}
	}()

	ds, err := docserver.New(cfg.DocServer)
	if err != nil {
		return err
	}
	if !ds.Configured() {
		log.Warn("docserver.url is empty, conversion is disabled")
	}

	responder := server.ErrorResponder{
		HideDetails:  cfg.HTTP.HideErrorDetails,
		StatusByCode: editor.StatusByCode,
	}
	srv := server.NewHTTPServer(cfg.HTTP, responder, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTracingMW(),
		middleware.NewCORSMW(cfg.HTTP.CORSAllowOrigins),
		middleware.NewTimeoutMW(cfg.HTTP.HandleTimeout),
		middleware.NewMetaInjectMW(),
		middleware.NewAlertingMW(),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(responder),
	})
	srv.RegisterRouter(func(r fiber.Router) {
		editor.RegisterRoutes(r,
			editor.NewSignToken(ds.Signer()),
			editor.NewSaveCallback(cfg.Editor, store, ds),
			editor.NewConvertPDF(cfg.Editor, store, ds),
		)
	})

	errCh := make(chan error, 1)
	go func() {
		log.With("address", cfg.HTTP.Address(), "storage", cfg.Storage.Driver).Info("http server starting")
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return srv.Stop()
}
