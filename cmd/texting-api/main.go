package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storekd-sms/internal/app"
	"storekd-sms/internal/bootstrap"
	"storekd-sms/internal/config"
	"storekd-sms/internal/logger"
	"storekd-sms/internal/middleware"
	"storekd-sms/internal/transport"
)

func main() {
	conf := config.Load()
	log := logger.Must(conf.Env, "texting-api")
	defer log.Sync() //nolint:errcheck

	if err := run(conf, log); err != nil {
		log.Errorw("application failed", "error", err)
		os.Exit(1)
	}
}

func run(conf config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, conf, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc := app.NewTextingService(rt.Manager, rt.Kinds, log)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "texting-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ServerHeader:          "",
		BodyLimit:             1 * 1024 * 1024,
	})

	fiberApp.Use(recover.New(recover.Config{EnableStackTrace: true}))
	fiberApp.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency} ${locals:request_id}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	fiberApp.Use(middleware.RequestIDMiddleware())
	fiberApp.Use(middleware.SecurityHeaders())
	fiberApp.Use(middleware.CORSConfig())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "texter": rt.Manager.DefaultTexterName()})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := fiberApp.Group("/api", middleware.APILimiter(100, time.Minute))
	transport.NewHandler(svc, log).Register(api)

	errChan := make(chan error, 1)
	go func() {
		log.Infow("texting-api started", "addr", conf.HTTPAddr, "queue", conf.Queue.Connection)
		if err := fiberApp.Listen(conf.HTTPAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("texting-api stopped gracefully")
	return nil
}
