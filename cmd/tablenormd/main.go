// Command tablenormd watches directories for extractor output and processes each new
// document on a worker pool. It serves gRPC health checks while running.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core"
	"github.com/joseph-ayodele/statement-tables/internal/core/async"
	"github.com/joseph-ayodele/statement-tables/internal/core/pipeline"
	"github.com/joseph-ayodele/statement-tables/internal/extract"
	"github.com/joseph-ayodele/statement-tables/internal/ingest"
	"github.com/joseph-ayodele/statement-tables/internal/repository"
)

// serviceName is the health-check name reported alongside the overall "" status.
const serviceName = "tablenorm.Daemon"

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.ValidateDaemon(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	var docs repository.DocumentRepository
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.ConfigFromCommon(cfg.Database), logger)
		if err != nil {
			return err
		}
		defer db.Close(logger)

		if err := db.HealthCheck(ctx, cfg.Database.DialTimeout, logger); err != nil {
			return err
		}
		logger.Info("DB health OK")
		if err := repository.Migrate(ctx, db, logger); err != nil {
			return err
		}
		docs = repository.NewDocumentRepository(db, logger)
	} else {
		logger.Warn("DB_URL not set, results are logged but not persisted")
	}

	pipe := pipeline.New(pipeline.ConfigFromTuning(cfg.Tuning), logger)
	processor := core.NewProcessor(logger, extract.NewFileSource(0, logger), pipe, docs)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(cfg.Server.QueueSize),
		async.WithProcessTimeout(cfg.Server.DocumentTimeout),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Watch.Dirs,
		AllowedExts: ingest.ExtSet(cfg.Watch.Extensions),
		SkipHidden:  cfg.Watch.SkipHidden,
		InitialScan: true,
		Debounce:    cfg.Watch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		queue.Shutdown(ctx)
		return err
	}

	// gRPC server
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		queue.Shutdown(ctx)
		return err
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
		}
		close(serveErr)
	}()
	logger.Info("gRPC serving", "addr", lis.Addr().String(), "watch_dirs", cfg.Watch.Dirs, "workers", cfg.Server.Workers)

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err, ok := <-serveErr:
			if ok {
				runErr = err
			}
			break loop
		case err, ok := <-watchErrs:
			if ok {
				logger.Warn("watch error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				break loop
			}
			job := async.Job{Path: path, SubmittedAt: time.Now(), RequestID: uuid.NewString()}
			if err := queue.Enqueue(ctx, job); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("enqueue failed", "path", path, "error", err)
			}
		}
	}

	logger.Info("shutting down...")
	hs.Shutdown()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.DocumentTimeout+5*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	grpcServer.GracefulStop()
	logger.Info("stopped")
	return runErr
}
