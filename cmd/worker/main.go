package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"payrecon/internal/config"
	"payrecon/internal/mirror"
	"payrecon/internal/queue"
	"payrecon/internal/store"
	"payrecon/internal/worker"
	"payrecon/pkg/logger"
)

// The worker process polls the persistent job queue (§4.I) and runs
// each claimed batch through the reconciliation pipeline. It is the
// out-of-process counterpart to the API's in-process fallback: when
// QUEUE_HOST is set, uploads are enqueued here instead of being run
// synchronously on the request goroutine.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.GetLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting reconciliation worker")

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.GetLogger().WithError(err).Fatal("Database unreachable")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	dataStore := store.New(db)
	progressMirror := selectMirror(cfg.Mirror)
	batchWorker := worker.New(dataStore, progressMirror)
	jobQueue := queue.NewPostgresQueue(db)

	opts := queue.ConsumeOptions{
		Concurrency:  cfg.Queue.Concurrency,
		LockDuration: cfg.Queue.LockDuration,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		BackoffBase:  cfg.Queue.BackoffBase,
		PollInterval: cfg.Queue.PollInterval,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.GetLogger().WithField("concurrency", opts.Concurrency).Info("Worker consuming job queue")

	handler := func(ctx context.Context, job queue.BatchJob) error {
		return batchWorker.Process(ctx, job.BatchID, job.FilePath)
	}

	if err := jobQueue.Consume(ctx, handler, opts); err != nil {
		logger.GetLogger().WithError(err).Fatal("Worker stopped")
	}

	logger.GetLogger().Info("Worker shut down cleanly")
}

func selectMirror(cfg config.MirrorConfig) mirror.Mirror {
	if cfg.Host == "" {
		return mirror.NewNullMirror()
	}
	return mirror.NewMemoryMirror()
}
