package handlers

import (
	"errors"
	"log"
	"net/http"

	request "mis_invoicing/internal/adapter/http/dto/request"
	response "mis_invoicing/internal/adapter/http/dto/response"
	"mis_invoicing/internal/usecase"
	"mis_invoicing/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)

// PaymentHandler handles HTTP requests for payments. Every write reconciles
// the owning invoice before responding.
type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// RecordPayment godoc
// @Summary      Record a payment against an invoice
// @Description  When mp_payload is sent the amount is charged through Mercado Pago first.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        invoice_id  query     string                  true  "Invoice ID"
// @Param        payment     body      request.PaymentRequest  true  "Payment"
// @Success      201         {object}  response.PaymentResponse
// @Failure      400         {object}  pkg.HTTPError
// @Failure      402         {object}  pkg.HTTPError
// @Failure      404         {object}  pkg.HTTPError
// @Router       /payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	invoiceID := c.Query("invoice_id")
	log.Printf("[payment][handler] record start invoice_id=%s", invoiceID)

	var payload request.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[payment][handler] invalid payload invoice_id=%s err=%v", invoiceID, err)
		writeError(c, errInvalidPaymentPayload)
		return
	}
	in, err := payload.ToInput()
	if err != nil {
		writeError(c, pkg.NewDomainError("INVALID_PAYMENT_INPUT", err.Error(), err, http.StatusBadRequest))
		return
	}

	created, err := h.usecase.RecordPayment(c.Request.Context(), invoiceID, in)
	if err != nil {
		log.Printf("[payment][handler] record failed invoice_id=%s err=%v", invoiceID, err)
		writeError(c, mapPaymentError(err))
		return
	}
	log.Printf("[payment][handler] record success invoice_id=%s payment_id=%s amount=%s", invoiceID, created.ID, created.Amount.StringFixed(2))
	c.JSON(http.StatusCreated, response.FromPayment(created))
}

// ListPayments godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Success      200  {array}  response.PaymentResponse
// @Router       /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	ps, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(ps))
}

// GetPayment godoc
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.PaymentResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

// ListPaymentsByInvoice godoc
// @Summary      List payments of an invoice
// @Tags         payments
// @Produce      json
// @Param        invoice_id  path     string  true  "Invoice ID"
// @Success      200         {array}  response.PaymentResponse
// @Router       /payments/invoice/{invoice_id} [get]
func (h *PaymentHandler) ListPaymentsByInvoice(c *gin.Context) {
	ps, err := h.usecase.ListByInvoiceID(c.Request.Context(), c.Param("invoice_id"))
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(ps))
}

// DeletePayment godoc
// @Summary      Delete payment
// @Tags         payments
// @Param        id   path  string  true  "Payment ID"
// @Success      204
// @Failure      404  {object}  pkg.HTTPError
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id := c.Param("id")
	if err := h.usecase.DeletePayment(c.Request.Context(), id); err != nil {
		log.Printf("[payment][handler] delete failed payment_id=%s err=%v", id, err)
		writeError(c, mapPaymentError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidPaymentID), errors.Is(err, usecase.ErrInvalidInvoiceID), errors.Is(err, usecase.ErrInvalidGatewayPayload), errors.Is(err, usecase.ErrPaymentGatewayBadRequest):
		return errInvalidRequest
	case errors.Is(err, usecase.ErrInvalidAmount):
		return pkg.NewDomainErrorSimple("INVALID_AMOUNT", "Payment amount must be positive", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayNotConfigured):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_NOT_CONFIGURED", "Payment provider not configured", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayCustomerNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_CUSTOMER_NOT_FOUND", "Payer not found for this Mercado Pago test context", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayInvalidUsers):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_INVALID_USERS", "Invalid users involved between seller token and payer test user", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayUnauthorized):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_UNAUTHORIZED", "Payment provider unauthorized", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrPaymentNotApproved):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_APPROVED", "Payment was not approved by the provider", http.StatusPaymentRequired)
	case errors.Is(err, usecase.ErrInvoiceNotFound):
		return pkg.NewDomainErrorSimple("INVOICE_NOT_FOUND", "Invoice not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	default:
		return mapCommonError(err)
	}
}
