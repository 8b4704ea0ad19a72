// Package main is the entry point for the salescore background worker.
// It runs the periodic document sweeps (quote expiry, invoice overdue),
// relays outbox events and cleans up expired system records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain/documents/invoice"
	"salescore/internal/domain/documents/quote"
	"salescore/internal/domain/documents/salesorder"
	"salescore/internal/infrastructure/storage/postgres"
	"salescore/internal/infrastructure/storage/postgres/document_repo"
	"salescore/pkg/logger"
	"salescore/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting salescore worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	worker := NewWorker(pool, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the background loops against the shared database.
type Worker struct {
	pool *postgres.Pool
	log  *logger.Logger

	quotes   *quote.Service
	invoices *invoice.Service
	relay    *postgres.OutboxRelay
	idemp    *postgres.IdempotencyStore
}

func NewWorker(pool *postgres.Pool, log *logger.Logger) *Worker {
	txManager := postgres.NewTxManager(pool)
	gen := numerator.New(pool.Unwrap())
	publisher := postgres.NewOutboxPublisher(txManager)

	orderRepo := document_repo.NewSalesOrderRepo(txManager)
	orderService := salesorder.NewService(orderRepo, gen, txManager, publisher)

	quoteRepo := document_repo.NewQuoteRepo(txManager)
	quoteService := quote.NewService(quoteRepo, orderService, gen, txManager, publisher)

	invoiceRepo := document_repo.NewInvoiceRepo(txManager)
	invoiceService := invoice.NewService(invoiceRepo, orderService, gen, txManager, publisher)

	relay := postgres.NewOutboxRelay(pool.Unwrap(), 100, postgres.OutboxHandlerFunc(
		func(ctx context.Context, msg *postgres.OutboxMessage) error {
			// Downstream delivery: for now events are logged; a broker
			// sink plugs in here without touching the relay.
			logger.Info(ctx, "event delivered",
				"event_type", msg.EventType,
				"aggregate_id", msg.AggregateID,
			)
			return nil
		},
	))

	return &Worker{
		pool:     pool,
		log:      log.WithComponent("worker"),
		quotes:   quoteService,
		invoices: invoiceService,
		relay:    relay,
		idemp:    postgres.NewIdempotencyStore(txManager, 10*time.Minute),
	}
}

// Run starts the worker loops and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	relayTicker := time.NewTicker(500 * time.Millisecond)
	defer relayTicker.Stop()

	sweepTicker := time.NewTicker(getEnvDuration("SWEEP_INTERVAL", time.Minute))
	defer sweepTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-relayTicker.C:
			w.relayOutbox(ctx)
		case <-sweepTicker.C:
			w.runSweeps(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) relayOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox relay failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("relayed outbox batch", "count", processed)
	}
}

// runSweeps expires stale quotes and flags overdue invoices, one company
// at a time so every status change stays inside that company's scope.
func (w *Worker) runSweeps(ctx context.Context) {
	asOf := time.Now().UTC()

	for _, companyID := range w.sweepCandidates(ctx, asOf) {
		sc := scope.Scope{CompanyID: companyID}

		expired, err := w.quotes.MarkExpired(ctx, sc, asOf)
		if err != nil {
			w.log.Errorw("quote expiry sweep failed", "company_id", companyID, "error", err)
		} else if expired > 0 {
			w.log.Infow("quotes expired", "company_id", companyID, "count", expired)
		}

		overdue, err := w.invoices.CheckOverdue(ctx, sc, asOf)
		if err != nil {
			w.log.Errorw("overdue sweep failed", "company_id", companyID, "error", err)
		} else if overdue > 0 {
			w.log.Infow("invoices flagged overdue", "company_id", companyID, "count", overdue)
		}
	}
}

// sweepCandidates returns companies that currently hold at least one
// sweep-eligible document, so quiet companies cost nothing per tick.
func (w *Worker) sweepCandidates(ctx context.Context, asOf time.Time) []id.ID {
	rows, err := w.pool.Query(ctx, `
		SELECT company_id FROM doc_quotes
		WHERE status = 'SENT' AND valid_until IS NOT NULL AND valid_until < $1
		UNION
		SELECT company_id FROM doc_sales_invoices
		WHERE status IN ('SENT', 'PARTIAL_PAID') AND due_date < $1
	`, asOf)
	if err != nil {
		w.log.Errorw("failed to list sweep candidates", "error", err)
		return nil
	}
	defer rows.Close()

	var companies []id.ID
	for rows.Next() {
		var companyID id.ID
		if err := rows.Scan(&companyID); err != nil {
			w.log.Errorw("failed to scan sweep candidate", "error", err)
			return companies
		}
		companies = append(companies, companyID)
	}
	return companies
}

func (w *Worker) cleanup(ctx context.Context) {
	if purged, err := w.relay.PurgePublished(ctx, 7*24*time.Hour); err != nil {
		w.log.Errorw("outbox purge failed", "error", err)
	} else if purged > 0 {
		w.log.Infow("purged delivered outbox messages", "count", purged)
	}

	if removed, err := w.idemp.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", removed)
	}

	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_refresh_tokens
		WHERE expires_at < NOW() OR revoked_at < NOW() - INTERVAL '7 days'
	`)
	if err != nil {
		w.log.Errorw("session cleanup failed", "error", err)
		return
	}
	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "count", result.RowsAffected())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
