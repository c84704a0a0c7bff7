// Package worker is the batch worker (§4.K): it drives one upload
// through parsing, matching, and persistence, in bounded-memory
// chunks. Nothing here talks HTTP or touches the queue directly — it
// is invoked by whatever delivery mechanism claimed the job
// (internal/queue's Postgres consumer, or the in-process fallback),
// so Process is a plain function a test can call without a server.
package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"payrecon/internal/domain"
	"payrecon/internal/matching"
	"payrecon/internal/mirror"
	"payrecon/internal/parser"
	"payrecon/internal/store"
	"payrecon/pkg/logger"
)

// ChunkSize bounds the worker's in-memory row buffer (§4.K: "bounded
// memory O(CHUNK_SIZE)").
const ChunkSize = 1000

type Worker struct {
	store  *store.Store
	mirror mirror.Mirror
}

func New(s *store.Store, m mirror.Mirror) *Worker {
	return &Worker{store: s, mirror: m}
}

type chunkCounters struct {
	processed   int
	autoMatched int
	needsReview int
	unmatched   int
}

// Process runs the full §4.K sequence for one batch. On any error the
// batch is marked failed, the uploaded file is still removed, and the
// error is returned so the caller (queue consumer or in-process
// fallback) can decide whether to retry.
func (w *Worker) Process(ctx context.Context, batchID, filePath string) error {
	log := logger.GetLogger().WithField("batchId", batchID)

	fail := func(err error) error {
		log.WithError(err).Error("batch processing failed")
		w.store.MarkBatchFailed(ctx, batchID)
		w.mirror.SetStatus(batchID, domain.BatchFailed)
		removeFile(filePath)
		return err
	}

	if err := w.store.WithTx(ctx, func(tx *sql.Tx) error {
		return w.store.ResetBatchForProcessing(ctx, tx, batchID)
	}); err != nil {
		return fail(fmt.Errorf("reset batch for processing: %w", err))
	}
	w.mirror.Init(batchID)

	total, err := w.runChunks(ctx, batchID, filePath)
	if err != nil {
		// total counts only the chunks already committed, so it equals
		// the processed counter the failed batch keeps.
		if totalErr := w.store.SetBatchTotal(ctx, batchID, total); totalErr != nil {
			log.WithError(totalErr).Error("failed to persist partial batch total")
		}
		return fail(err)
	}

	if err := w.store.SetBatchTotal(ctx, batchID, total); err != nil {
		log.WithError(err).Error("failed to persist final batch total")
	}

	if err := w.store.MarkBatchCompleted(ctx, batchID); err != nil {
		return fail(fmt.Errorf("mark batch completed: %w", err))
	}
	w.mirror.SetStatus(batchID, domain.BatchCompleted)
	removeFile(filePath)

	log.WithField("total", total).Info("batch processing completed")
	return nil
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.GetLogger().WithError(err).WithField("file", path).Warn("failed to remove processed upload")
	}
}

// runChunks streams the CSV, matching and persisting CHUNK_SIZE rows
// at a time, and returns the total accepted row count.
func (w *Worker) runChunks(ctx context.Context, batchID, filePath string) (int, error) {
	total := 0
	buffer := make([]parser.ParsedRow, 0, ChunkSize)

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := w.processChunk(ctx, batchID, buffer); err != nil {
			return err
		}
		total += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	err := parser.Stream(filePath, func(row parser.ParsedRow) error {
		buffer = append(buffer, row)
		if len(buffer) >= ChunkSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}

	return total, nil
}

// processChunk implements §4.K step 3: candidate lookup, matching,
// bulk insert, counter increment, mirror update, and the auto-matched
// audit trail for the rows this chunk just wrote.
func (w *Worker) processChunk(ctx context.Context, batchID string, rows []parser.ParsedRow) error {
	amountSet := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		amountSet[r.Amount.StringFixed(2)] = struct{}{}
	}
	amounts := make([]string, 0, len(amountSet))
	for a := range amountSet {
		amounts = append(amounts, a)
	}

	candidatesByAmount, err := w.store.FindCandidateInvoicesByAmounts(ctx, amounts)
	if err != nil {
		return fmt.Errorf("find candidate invoices: %w", err)
	}

	transactions := make([]domain.BankTransaction, 0, len(rows))
	counters := chunkCounters{}

	for _, row := range rows {
		candidates := candidatesByAmount[row.Amount.StringFixed(2)]
		result := matching.Match(row.Description, row.TransactionDate, candidates)

		tx := domain.BankTransaction{
			ID:               uuid.NewString(),
			UploadBatchID:    batchID,
			TransactionDate:  row.TransactionDate,
			Description:      row.Description,
			Amount:           row.Amount,
			ReferenceNumber:  row.ReferenceNumber,
			Status:           statusFor(result.Classification),
			MatchedInvoiceID: result.MatchedInvoiceID,
			ConfidenceScore:  &result.Score,
			MatchDetails:     serializeMatchDetails(result),
		}
		transactions = append(transactions, tx)

		counters.processed++
		switch result.Classification {
		case matching.AutoMatched:
			counters.autoMatched++
		case matching.NeedsReview:
			counters.needsReview++
		default:
			counters.unmatched++
		}
	}

	if err := w.store.WithTx(ctx, func(sqlTx *sql.Tx) error {
		if err := w.store.BulkInsertTransactions(ctx, sqlTx, batchID, transactions); err != nil {
			return err
		}
		if err := w.store.IncrementBatchCounters(ctx, sqlTx, batchID,
			counters.processed, counters.autoMatched, counters.needsReview, counters.unmatched); err != nil {
			return err
		}
		return w.writeAutoMatchedAudit(ctx, sqlTx, batchID, counters.autoMatched)
	}); err != nil {
		return fmt.Errorf("persist chunk: %w", err)
	}

	w.mirror.Increment(batchID, mirror.Fields{
		Processed:   counters.processed,
		AutoMatched: counters.autoMatched,
		NeedsReview: counters.needsReview,
		Unmatched:   counters.unmatched,
	})

	return nil
}

// writeAutoMatchedAudit implements §4.K step 5: a bounded secondary
// query recovers the ids of this chunk's auto-matched rows, then one
// bulk insert appends their audit entries.
func (w *Worker) writeAutoMatchedAudit(ctx context.Context, sqlTx *sql.Tx, batchID string, autoMatchedCount int) error {
	if autoMatchedCount == 0 {
		return nil
	}

	matched, err := w.store.FindAutoMatchedTransactions(ctx, sqlTx, batchID, autoMatchedCount)
	if err != nil {
		return err
	}

	entries := make([]domain.MatchAuditEntry, 0, len(matched))
	for _, m := range matched {
		invoiceID := m.MatchedInvoiceID
		reason := fmt.Sprintf("Auto-matched with %.2f%% confidence", m.ConfidenceScore)
		entries = append(entries, domain.MatchAuditEntry{
			ID:            uuid.NewString(),
			TransactionID: m.ID,
			Action:        domain.ActionAutoMatched,
			NewInvoiceID:  &invoiceID,
			Actor:         domain.ActorSystem,
			Reason:        &reason,
		})
	}

	return w.store.BulkInsertAudit(ctx, sqlTx, entries)
}

func statusFor(c matching.Classification) domain.TransactionStatus {
	switch c {
	case matching.AutoMatched:
		return domain.TxAutoMatched
	case matching.NeedsReview:
		return domain.TxNeedsReview
	default:
		return domain.TxUnmatched
	}
}

func serializeMatchDetails(r matching.MatchResult) string {
	payload := struct {
		Breakdown     matching.Breakdown `json:"breakdown"`
		Classification string            `json:"classification"`
		Explanation   string             `json:"explanation"`
		InvoiceNumber string             `json:"invoiceNumber,omitempty"`
	}{
		Breakdown:      r.Breakdown,
		Classification: string(r.Classification),
		Explanation:    r.Explanation,
		InvoiceNumber:  r.InvoiceNumber,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.GetLogger().WithError(err).Error("failed to serialize match details")
		return "{}"
	}
	return string(b)
}
