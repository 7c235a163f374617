package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"topproducts/internal/api"
	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
	"topproducts/internal/logger"
	"topproducts/internal/topfive"
)

func main() {
	bootstrapLog := logger.NewStderr()

	cfg, err := config.LoadOrDefault()
	if err != nil {
		bootstrapLog.Error("failed to load config", err)
		os.Exit(1)
	}

	logSvc, err := logger.New(cfg)
	if err != nil {
		bootstrapLog.Error("logger init failed; using stderr", err)
		logSvc = bootstrapLog
	}
	defer logSvc.Close()

	tokens := &identity.Lazy{ClientID: os.Getenv(config.EnvManagedIdentityID)}
	dbOpts := db.OptionsFromConfig(cfg)

	svc := topfive.New(topfive.Deps{
		Lookup:       os.LookupEnv,
		Tokens:       tokens,
		DB:           dbOpts,
		QueryTimeout: cfg.DB.QueryTimeout,
		Logger:       logSvc,
	})

	srv, err := api.NewServer(cfg, api.ServerDeps{
		Lookup:  os.LookupEnv,
		Tokens:  tokens,
		DB:      dbOpts,
		Service: svc,
		Logger:  logSvc,
	})
	if err != nil {
		logSvc.Error("config validation error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logSvc.Info(fmt.Sprintf("topproductsd listening on %s", srv.Addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logSvc.Error("server stopped", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logSvc.Info(fmt.Sprintf("shutdown signal: %s", sig))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logSvc.Error("shutdown error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logSvc.Error("server stopped", err)
			os.Exit(1)
		}
	}
}
