// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"findvax-notifier/internal/api"
	"findvax-notifier/internal/app"
	"findvax-notifier/internal/common/camunda"
	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/database"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/observability"

	mb "findvax-notifier/internal/workers/admin/megaphone-broadcast"
	ns "findvax-notifier/internal/workers/availability/notify-subscribers"
	cs "findvax-notifier/internal/workers/subscription/create-subscription"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New("worker-manager", log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		zapLog.Fatal("failed to wire notifier", zap.Error(err))
	}
	defer notifier.Close()

	// --- Camunda job workers ---
	var workers []*camunda.Worker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(cfg.Camunda)
		if err != nil {
			zapLog.Fatal("zeebe client creation failed", zap.Error(err))
		}
		if err := database.WaitReady(ctx, "zeebe", zeebe, database.DefaultConnectOptions, log); err != nil {
			zapLog.Fatal("zeebe gateway unreachable", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		if config.IsWorkerEnabled(cfg, cs.TaskType) {
			workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), cs.TaskType, config.GetWorkerConfig(cfg, cs.TaskType), notifier.Intake, log))
		}

		if config.IsWorkerEnabled(cfg, ns.TaskType) {
			handler := ns.NewHandler(ns.LoadConfig(cfg), notifier.Pipeline, obs, log)
			workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), ns.TaskType, config.GetWorkerConfig(cfg, ns.TaskType), handler, log))
		}

		if config.IsWorkerEnabled(cfg, mb.TaskType) {
			handler := mb.NewHandler(mb.LoadConfig(cfg), notifier.Megaphone, log)
			workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), mb.TaskType, config.GetWorkerConfig(cfg, mb.TaskType), handler, log))
		}

		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("camunda disabled, serving HTTP only")
	}

	// --- HTTP: intake, admin, health & metrics ---
	srv := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewRouter(api.RouterDeps{
			Intake:      notifier.Intake,
			Broadcaster: notifier.Megaphone,
			Ready:       notifier.Ready,
			Logger:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}
