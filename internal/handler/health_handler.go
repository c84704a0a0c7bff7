package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payrecon/internal/store"
	"payrecon/pkg/response"
)

// HealthHandler serves the liveness/readiness probes of
// SPEC_FULL.md supplement 4.
type HealthHandler struct {
	store *store.Store
}

func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Health godoc
// @Summary Basic health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "ok", gin.H{"status": "ok"})
}

// Live godoc
// @Summary Liveness probe: the process is running
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, "alive", gin.H{"status": "alive"})
}

// Ready godoc
// @Summary Readiness probe: the store is reachable
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.Unavailable(c, "store unreachable")
		return
	}
	response.Success(c, http.StatusOK, "ready", gin.H{"status": "ready"})
}
