package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storekd-sms/internal/bootstrap"
	"storekd-sms/internal/config"
	"storekd-sms/internal/logger"
)

func main() {
	conf := config.Load()
	log := logger.Must(conf.Env, "text-worker")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, conf, log)
	if err != nil {
		log.Errorw("bootstrap", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	consumer, err := rt.Consumer()
	if err != nil {
		log.Errorw("queue consumer", "error", err)
		os.Exit(1)
	}

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server", "error", err)
			}
		}()
		defer srv.Close()
	}

	if err := rt.Worker().Run(ctx, consumer, conf.Queue.Name); err != nil && ctx.Err() == nil {
		log.Errorw("consumer error", "error", err)
		os.Exit(1)
	}

	log.Info("shutting down text-worker")
}
