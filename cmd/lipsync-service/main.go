// main package for the lipsync-service
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

	"github.com/book-expert/lipsync-service/internal/config"
	"github.com/book-expert/lipsync-service/internal/lipsync"
	"github.com/book-expert/lipsync-service/internal/metrics"
	"github.com/book-expert/lipsync-service/internal/objectstore"
	"github.com/book-expert/lipsync-service/internal/worker"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
)

const (
	metricsPath            = "/metrics"
	metricsReadTimeout     = 5 * time.Second
	metricsShutdownTimeout = 5 * time.Second
	natsClientName         = "lipsync-service"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "lipsync-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, finalLog)
}

// serve wires the engine, NATS and metrics together and blocks until ctx ends.
func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	engine, err := lipsync.NewEngine(lipsync.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to build viseme engine: %w", err)
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL, nats.Name(natsClientName))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	textStore, err := objectstore.New(jetstreamContext, cfg.NATS.TextObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open text store: %w", err)
	}

	timelineStore, err := objectstore.New(jetstreamContext, cfg.NATS.TimelineObjectStoreBucket,
		objectstore.WithContentType(cfg.Format().ContentType()))
	if err != nil {
		return fmt.Errorf("failed to open timeline store: %w", err)
	}

	workerMetrics := metrics.New()

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		worker.Settings{
			Subject:        cfg.NATS.TextProcessedSubject,
			CreatedSubject: cfg.NATS.TimelineCreatedSubject,
			Format:         cfg.Format(),
			Options:        cfg.TimelineOptions(),
		},
		textStore,
		timelineStore,
		engine,
		workerMetrics,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	metricsServer := startMetricsServer(cfg.Lipsync.MetricsAddr, workerMetrics, log)
	defer shutdownMetricsServer(metricsServer, log)

	log.System("Lipsync-Service successfully initialized. Listening for texts on subject: %s",
		cfg.NATS.TextProcessedSubject)

	err = natsWorker.Run(ctx)
	if err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}

	log.System("Lipsync-Service shut down.")

	return nil
}

func startMetricsServer(addr string, workerMetrics *metrics.Metrics, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, workerMetrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed: %v", err)
		}
	}()

	log.Info("Serving metrics on %s%s", addr, metricsPath)

	return server
}

func shutdownMetricsServer(server *http.Server, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		log.Warn("Failed to shut down metrics server: %v", err)
	}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
