package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"payrecon/internal/middleware"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Reconciliation *ReconciliationHandler
	Transaction    *TransactionHandler
	Invoice        *InvoiceHandler
	Health         *HealthHandler
}

// SetupRouter wires every §6 route onto a fresh gin engine under the
// configured API prefix, matching the teacher's middleware order:
// recovery first, then request logging, then error mapping.
func SetupRouter(apiPrefix string, h Handlers) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", h.Health.Health)
	router.GET("/health/live", h.Health.Live)
	router.GET("/health/ready", h.Health.Ready)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group(apiPrefix)
	{
		reconciliation := v1.Group("/reconciliation")
		{
			reconciliation.POST("/upload", h.Reconciliation.Upload)
			reconciliation.GET("", h.Reconciliation.List)
			reconciliation.GET("/:batchId", h.Reconciliation.Status)
			reconciliation.GET("/:batchId/transactions", h.Reconciliation.Transactions)
			reconciliation.GET("/:batchId/summary", h.Reconciliation.Summary)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("/bulk-confirm", h.Transaction.BulkConfirm)
			transactions.GET("/:id", h.Transaction.Get)
			transactions.GET("/:id/audit", h.Transaction.Audit)
			transactions.POST("/:id/confirm", h.Transaction.Confirm)
			transactions.POST("/:id/reject", h.Transaction.Reject)
			transactions.POST("/:id/match", h.Transaction.Match)
			transactions.POST("/:id/external", h.Transaction.External)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.GET("/search", h.Invoice.Search)
			invoices.GET("/candidates", h.Invoice.Candidates)
			invoices.GET("/by-number/:number", h.Invoice.GetByNumber)
			invoices.GET("/:id", h.Invoice.Get)
		}
	}

	return router
}
