package routes

import (
	"net/http"

	"mis_invoicing/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathClients   = "/clients"
	PathEstimates = "/estimates"
	PathInvoices  = "/invoices"
	PathPayments  = "/payments"
	PathDashboard = "/dashboard"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func addClientRoutes(rg *gin.RouterGroup, h *handlers.ClientHandler) {
	clients := rg.Group(PathClients)
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

func addEstimateRoutes(rg *gin.RouterGroup, h *handlers.EstimateHandler) {
	estimates := rg.Group(PathEstimates)
	{
		estimates.POST("", h.CreateEstimate)
		estimates.GET("", h.ListEstimates)
		estimates.GET("/:id", h.GetEstimate)
		estimates.GET("/client/:client_id", h.ListEstimatesByClient)
		estimates.PUT("/:id", h.UpdateEstimate)
		estimates.POST("/:id/convert", h.ConvertEstimate)
		estimates.DELETE("/:id", h.DeleteEstimate)
	}
}

func addInvoiceRoutes(rg *gin.RouterGroup, h *handlers.InvoiceHandler) {
	invoices := rg.Group(PathInvoices)
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.GET("/client/:client_id", h.ListInvoicesByClient)
		invoices.GET("/status/:status", h.ListInvoicesByStatus)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.POST("/:id/reconcile", h.ReconcileInvoice)
		invoices.GET("/:id/balance", h.GetInvoiceBalance)
		invoices.DELETE("/:id", h.DeleteInvoice)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, h *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("", h.RecordPayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.GET("/invoice/:invoice_id", h.ListPaymentsByInvoice)
		payments.DELETE("/:id", h.DeletePayment)
	}
}

func addDashboardRoutes(rg *gin.RouterGroup, h *handlers.DashboardHandler) {
	rg.GET(PathDashboard+"/stats", h.GetStats)
}
