package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"payrecon/internal/config"
	"payrecon/internal/handler"
	"payrecon/internal/mirror"
	"payrecon/internal/query"
	"payrecon/internal/queue"
	"payrecon/internal/statemachine"
	"payrecon/internal/store"
	"payrecon/internal/worker"
	"payrecon/pkg/logger"
)

// @title Invoice Reconciliation API
// @version 1.0
// @description API for reconciling bank transactions against open invoices
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@payrecon.example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting invoice reconciliation service")

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.GetLogger().Info("Database connection established")

	dataStore := store.New(db)
	progressMirror := selectMirror(cfg.Mirror)
	batchWorker := worker.New(dataStore, progressMirror)
	jobQueue := selectQueue(cfg.Queue, db, batchWorker)

	sm := statemachine.New(dataStore)
	queryService := query.New(dataStore)

	handlers := handler.Handlers{
		Reconciliation: handler.NewReconciliationHandler(dataStore, queryService, jobQueue, batchWorker, cfg.App.UploadDir),
		Transaction:    handler.NewTransactionHandler(dataStore, sm),
		Invoice:        handler.NewInvoiceHandler(dataStore, queryService),
		Health:         handler.NewHealthHandler(dataStore),
	}

	router := handler.SetupRouter(cfg.Server.APIPrefix, handlers)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.GetLogger().WithField("address", addr).Info("Server starting")

	if err := router.Run(addr); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to start server")
	}
}

func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// selectMirror picks between the in-memory progress mirror and the
// null implementation per §9's capability-interface pattern: a Host
// of "" means no mirror backend was configured.
func selectMirror(cfg config.MirrorConfig) mirror.Mirror {
	if cfg.Host == "" {
		return mirror.NewNullMirror()
	}
	return mirror.NewMemoryMirror()
}

// selectQueue picks between the persistent Postgres-backed queue and
// the synchronous in-process queue. An in-process queue still
// satisfies the Queue interface, so the upload handler's enqueue path
// is uniform regardless of which backend is active.
func selectQueue(cfg config.QueueConfig, db *sql.DB, w *worker.Worker) queue.Queue {
	if cfg.Host == "" {
		return queue.NewInProcessQueue(func(ctx context.Context, job queue.BatchJob) error {
			return w.Process(ctx, job.BatchID, job.FilePath)
		})
	}
	return queue.NewPostgresQueue(db)
}
