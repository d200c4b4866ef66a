package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tontt4/steamsync/internal/app"
	"github.com/tontt4/steamsync/internal/config"
	"github.com/tontt4/steamsync/internal/infra/logx"
)

func main() {
	log := logx.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Error("wiring failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Loop.Start(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: a.Router}
	go func() {
		log.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", "grace", cfg.GracePeriod)

	// Shutdown blocks until drained or the grace deadline, then a final
	// flush of both stores
	shctx, cancel := context.WithTimeout(context.Background(), cfg.GracePeriod)
	defer cancel()
	if err := srv.Shutdown(shctx); err != nil {
		log.Warn("http shutdown", "err", err)
	}

	a.Flush()
	log.Info("bye")
}
