package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payrecon/internal/domain"
	"payrecon/internal/query"
	"payrecon/internal/store"
	"payrecon/pkg/response"
)

// InvoiceHandler serves invoice lookup and the search/candidates
// endpoints a manual-match UI drives (§4.M, §6).
type InvoiceHandler struct {
	store *store.Store
	query *query.Service
}

func NewInvoiceHandler(s *store.Store, q *query.Service) *InvoiceHandler {
	return &InvoiceHandler{store: s, query: q}
}

// Search godoc
// @Summary Search invoices by amount, status, and customer name
// @Tags invoices
// @Produce json
// @Param q query string false "Customer name substring"
// @Param amount query number false "Exact amount, ±0.01"
// @Param status query string false "Comma-separated invoice statuses"
// @Param includePaid query bool false "Include paid invoices"
// @Param limit query int false "Max rows, default 20, max 50"
// @Success 200 {object} response.Response
// @Router /invoices/search [get]
func (h *InvoiceHandler) Search(c *gin.Context) {
	var amount *decimal.Decimal
	if raw := c.Query("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			response.BadRequest(c, "amount must be numeric")
			return
		}
		amount = &parsed
	}

	var statuses []domain.InvoiceStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				statuses = append(statuses, domain.InvoiceStatus(s))
			}
		}
	}

	includePaid := c.Query("includePaid") == "true"

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	invoices, err := h.query.SearchInvoices(c.Request.Context(), amount, statuses, includePaid, c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "invoices retrieved", gin.H{
		"invoices": invoices,
		"total":    len(invoices),
	})
}

// Candidates godoc
// @Summary Candidate invoices for a given amount, for manual matching
// @Tags invoices
// @Produce json
// @Param amount query number true "Exact amount to match against"
// @Param limit query int false "Max rows, default 10, max 50"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /invoices/candidates [get]
func (h *InvoiceHandler) Candidates(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		response.BadRequest(c, "amount is required")
		return
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		response.BadRequest(c, "amount must be numeric")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	statuses := []domain.InvoiceStatus{domain.InvoiceDraft, domain.InvoiceSent, domain.InvoiceOverdue}
	invoices, err := h.query.SearchInvoices(c.Request.Context(), &amount, statuses, false, "", limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "candidate invoices retrieved", gin.H{
		"candidates": invoices,
		"total":      len(invoices),
	})
}

// Get godoc
// @Summary Get a single invoice by id
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, "invoice id must be a valid uuid")
		return
	}

	invoice, err := h.store.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", gin.H{"invoice": invoice})
}

// GetByNumber godoc
// @Summary Get a single invoice by its human-readable number
// @Tags invoices
// @Produce json
// @Param number path string true "Invoice number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/by-number/{number} [get]
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")

	invoice, err := h.store.GetInvoiceByNumber(c.Request.Context(), number)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", gin.H{"invoice": invoice})
}
