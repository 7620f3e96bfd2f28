// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"docugen-workers/internal/common/camunda"
	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/observability"
	generatedocument "docugen-workers/internal/workers/docugen/generate-document"
	listtemplates "docugen-workers/internal/workers/docugen/list-templates"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
			zap.Int("attempt", i+1),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		time.Sleep(delay)
		delay *= 2
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability)
	defer obs.Shutdown()

	ctx := context.Background()

	zc, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zc.Close()

	deps, cleanup, err := buildDependencies(ctx, cfg, obs, zapLog, log)
	if err != nil {
		zapLog.Fatal("dependency wiring failed", zap.Error(err))
	}
	defer cleanup()

	workers := camunda.NewWorkers(zc.GetClient(), log)

	genCfg := config.GetWorkerConfig(cfg, generatedocument.TaskType)
	workers.Start(generatedocument.TaskType, genCfg,
		generatedocument.NewHandler(generatedocument.FromWorkerConfig(genCfg, cfg.DocuGen), deps.generate, log))

	listCfg := config.GetWorkerConfig(cfg, listtemplates.TaskType)
	workers.Start(listtemplates.TaskType, listCfg,
		listtemplates.NewHandler(listtemplates.FromWorkerConfig(listCfg), deps.generate.Pipeline, log))

	zapLog.Info("Workers registered", zap.Int("count", workers.Count()))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler:           newHealthMux(zc.HealthCheck),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
