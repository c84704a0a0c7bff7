package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payrecon/internal/domain"
	"payrecon/internal/statemachine"
	"payrecon/internal/store"
	"payrecon/pkg/response"
)

// TransactionHandler serves the per-transaction admin actions and
// reads of §6 (confirm/reject/match/external/bulk-confirm, get, audit).
type TransactionHandler struct {
	store *store.Store
	sm    *statemachine.StateMachine
}

func NewTransactionHandler(s *store.Store, sm *statemachine.StateMachine) *TransactionHandler {
	return &TransactionHandler{store: s, sm: sm}
}

type performedByRequest struct {
	PerformedBy string `json:"performedBy"`
}

type confirmRequest struct {
	performedByRequest
}

type rejectRequest struct {
	performedByRequest
	Reason *string `json:"reason"`
}

type matchRequest struct {
	performedByRequest
	InvoiceID string  `json:"invoiceId" binding:"required"`
	Reason    *string `json:"reason"`
}

type externalRequest struct {
	performedByRequest
	Reason *string `json:"reason"`
}

type bulkConfirmRequest struct {
	performedByRequest
	BatchID string `json:"batchId" binding:"required"`
}

// Confirm godoc
// @Summary Confirm a transaction's current match
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id}/confirm [post]
func (h *TransactionHandler) Confirm(c *gin.Context) {
	id := c.Param("id")
	var req confirmRequest
	_ = c.ShouldBindJSON(&req)

	auditID, err := h.sm.Confirm(c.Request.Context(), id, req.PerformedBy)
	if err != nil {
		writeError(c, err)
		return
	}

	h.respondWithTransaction(c, id, "transaction confirmed", gin.H{"auditLogId": auditID})
}

// Reject godoc
// @Summary Reject a transaction's current match
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Router /transactions/{id}/reject [post]
func (h *TransactionHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.sm.Reject(c.Request.Context(), id, req.PerformedBy, req.Reason); err != nil {
		writeError(c, err)
		return
	}

	h.respondWithTransaction(c, id, "transaction rejected", nil)
}

// Match godoc
// @Summary Manually match a transaction to an invoice
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /transactions/{id}/match [post]
func (h *TransactionHandler) Match(c *gin.Context) {
	id := c.Param("id")
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewError(domain.KindBadRequest, "invalid request body", err))
		return
	}

	if err := h.sm.ManualMatch(c.Request.Context(), id, req.InvoiceID, req.PerformedBy); err != nil {
		writeError(c, err)
		return
	}

	h.respondWithTransaction(c, id, "transaction matched", nil)
}

// External godoc
// @Summary Mark a transaction as external (out of scope)
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Router /transactions/{id}/external [post]
func (h *TransactionHandler) External(c *gin.Context) {
	id := c.Param("id")
	var req externalRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.sm.MarkExternal(c.Request.Context(), id, req.PerformedBy, req.Reason); err != nil {
		writeError(c, err)
		return
	}

	h.respondWithTransaction(c, id, "transaction marked external", nil)
}

// BulkConfirm godoc
// @Summary Confirm every auto-matched transaction in a batch
// @Tags transactions
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /transactions/bulk-confirm [post]
func (h *TransactionHandler) BulkConfirm(c *gin.Context) {
	var req bulkConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewError(domain.KindBadRequest, "invalid request body", err))
		return
	}

	count, ids, err := h.sm.BulkConfirmAuto(c.Request.Context(), req.BatchID, req.PerformedBy)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "bulk confirm complete", gin.H{
		"confirmedCount": count,
		"transactionIds": ids,
	})
}

// Get godoc
// @Summary Get a transaction with its matched invoice and audit trail
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	tx, err := h.store.GetTransaction(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{"transaction": tx}

	if tx.MatchedInvoiceID != nil {
		if invoice, err := h.store.GetInvoice(ctx, *tx.MatchedInvoiceID); err == nil {
			body["matchedInvoice"] = invoice
		}
	}

	audit, err := h.store.ListAuditForTransaction(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	body["audit"] = audit

	response.Success(c, http.StatusOK, "transaction retrieved", body)
}

// Audit godoc
// @Summary Audit trail for a transaction, newest first
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Router /transactions/{id}/audit [get]
func (h *TransactionHandler) Audit(c *gin.Context) {
	id := c.Param("id")

	entries, err := h.store.ListAuditForTransaction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	// ListAuditForTransaction returns oldest-first; §6 wants newest-first here.
	reversed := make([]domain.MatchAuditEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	response.Success(c, http.StatusOK, "audit trail retrieved", gin.H{"auditLog": reversed})
}

func (h *TransactionHandler) respondWithTransaction(c *gin.Context, id, message string, extra gin.H) {
	tx, err := h.store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	body := gin.H{"transaction": tx}
	for k, v := range extra {
		body[k] = v
	}
	response.Success(c, http.StatusOK, message, body)
}
