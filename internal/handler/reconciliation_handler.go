package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payrecon/internal/domain"
	"payrecon/internal/query"
	"payrecon/internal/queue"
	"payrecon/internal/store"
	"payrecon/internal/worker"
	"payrecon/pkg/logger"
	"payrecon/pkg/response"
)

// maxUploadSize is the §6 upload limit: 50 MiB.
const maxUploadSize = 50 << 20

// ReconciliationHandler serves the upload, batch-listing, batch-status,
// batch-transactions, and batch-summary routes of §6.
type ReconciliationHandler struct {
	store     *store.Store
	query     *query.Service
	queue     queue.Queue
	worker    *worker.Worker
	uploadDir string
}

func NewReconciliationHandler(s *store.Store, q *query.Service, jobQueue queue.Queue, w *worker.Worker, uploadDir string) *ReconciliationHandler {
	return &ReconciliationHandler{store: s, query: q, queue: jobQueue, worker: w, uploadDir: uploadDir}
}

// Upload godoc
// @Summary Upload a bank statement CSV for reconciliation
// @Tags reconciliation
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reconciliation/upload [post]
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing or invalid file")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "file exceeds the 50 MiB upload limit")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		writeError(c, domain.NewError(domain.KindInternal, "prepare upload directory", err))
		return
	}

	batchID := uuid.NewString()
	destPath := filepath.Join(h.uploadDir, batchID+".csv")
	if err := c.SaveUploadedFile(fileHeader, destPath); err != nil {
		writeError(c, domain.NewError(domain.KindBadRequest, "save uploaded file", err))
		return
	}

	if _, err := h.store.CreateBatch(c.Request.Context(), batchID, fileHeader.Filename); err != nil {
		writeError(c, err)
		return
	}

	h.dispatch(c.Request.Context(), batchID, destPath)

	response.Success(c, http.StatusAccepted, "upload accepted", gin.H{"batchId": batchID})
}

// dispatch enqueues the processing job, falling back to direct
// in-process execution if the queue is unavailable (§4.I).
func (h *ReconciliationHandler) dispatch(ctx context.Context, batchID, filePath string) {
	job := queue.BatchJob{BatchID: batchID, FilePath: filePath}

	if err := h.queue.Enqueue(ctx, job); err != nil {
		logger.GetLogger().WithError(err).WithField("batchId", batchID).
			Warn("queue unavailable, falling back to in-process execution")
		go func() {
			if err := h.worker.Process(context.Background(), batchID, filePath); err != nil {
				logger.GetLogger().WithError(err).WithField("batchId", batchID).Error("in-process fallback failed")
			}
		}()
	}
}

// List godoc
// @Summary List reconciliation batches
// @Tags reconciliation
// @Produce json
// @Success 200 {object} response.Response
// @Router /reconciliation [get]
func (h *ReconciliationHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}

	var status *domain.BatchStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.BatchStatus(raw)
		status = &s
	}

	params := store.BatchListParams{
		Status:    status,
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	batches, total, err := h.query.ListBatches(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "batches retrieved", gin.H{
		"batches": batches,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Status godoc
// @Summary Get batch status and progress
// @Tags reconciliation
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reconciliation/{batchId} [get]
func (h *ReconciliationHandler) Status(c *gin.Context) {
	batchID := c.Param("batchId")

	b, err := h.store.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "batch status retrieved", gin.H{
		"id":              b.ID,
		"filename":        b.Filename,
		"status":          b.Status,
		"total":           b.Total,
		"processed":       b.Processed,
		"autoMatched":     b.AutoMatched,
		"needsReview":     b.NeedsReview,
		"unmatched":       b.Unmatched,
		"progressPercent": b.ProgressPercent(),
		"startedAt":       b.StartedAt,
		"completedAt":     b.CompletedAt,
		"createdAt":       b.CreatedAt,
	})
}

// Transactions godoc
// @Summary Cursor-paginated transactions for a batch
// @Tags reconciliation
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reconciliation/{batchId}/transactions [get]
func (h *ReconciliationHandler) Transactions(c *gin.Context) {
	batchID := c.Param("batchId")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	var status *domain.TransactionStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.TransactionStatus(raw)
		status = &s
	}

	page, err := h.query.ListTransactions(c.Request.Context(), batchID, status, c.Query("cursor"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{"data": page.Rows, "hasMore": page.HasMore}
	if page.HasMore {
		body["nextCursor"] = page.NextCursor
	}
	response.Success(c, http.StatusOK, "transactions retrieved", body)
}

// Summary godoc
// @Summary Derived batch summary (§4.M)
// @Tags reconciliation
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reconciliation/{batchId}/summary [get]
func (h *ReconciliationHandler) Summary(c *gin.Context) {
	batchID := c.Param("batchId")

	summary, err := h.query.BatchSummary(c.Request.Context(), batchID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "batch summary retrieved", summary)
}
