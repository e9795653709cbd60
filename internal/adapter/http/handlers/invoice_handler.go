package handlers

import (
	"errors"
	"log"
	"net/http"

	request "mis_invoicing/internal/adapter/http/dto/request"
	response "mis_invoicing/internal/adapter/http/dto/response"
	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"
	"mis_invoicing/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidInvoicePayload = pkg.NewDomainErrorSimple("INVALID_INVOICE_INPUT", "Invalid invoice payload", http.StatusBadRequest)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	usecase usecase.IInvoiceUseCase
}

func NewInvoiceHandler(uc usecase.IInvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{usecase: uc}
}

// CreateInvoice godoc
// @Summary      Create invoice
// @Description  inter_state=true charges IGST; otherwise GST is split into CGST and SGST.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        client_id    query     string                  true   "Client ID"
// @Param        inter_state  query     bool                    false  "Inter-state supply"
// @Param        invoice      body      request.InvoiceRequest  true   "Invoice"
// @Success      201          {object}  response.InvoiceResponse
// @Failure      400          {object}  pkg.HTTPError
// @Failure      404          {object}  pkg.HTTPError
// @Router       /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	in, interState, ok := bindInvoice(c)
	if !ok {
		return
	}

	inv, err := h.usecase.CreateInvoice(c.Request.Context(), c.Query("client_id"), in, interState)
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromInvoice(inv))
}

// ListInvoices godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Success      200  {array}  response.InvoiceResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invs, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoices(invs))
}

// GetInvoice godoc
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.InvoiceResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// ListInvoicesByClient godoc
// @Summary      List invoices of a client
// @Tags         invoices
// @Produce      json
// @Param        client_id  path     string  true  "Client ID"
// @Success      200        {array}  response.InvoiceResponse
// @Router       /invoices/client/{client_id} [get]
func (h *InvoiceHandler) ListInvoicesByClient(c *gin.Context) {
	invs, err := h.usecase.ListByClientID(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoices(invs))
}

// ListInvoicesByStatus godoc
// @Summary      List invoices by status
// @Tags         invoices
// @Produce      json
// @Param        status  path     string  true  "PENDING, PAID or OVERDUE"
// @Success      200     {array}  response.InvoiceResponse
// @Failure      400     {object}  pkg.HTTPError
// @Router       /invoices/status/{status} [get]
func (h *InvoiceHandler) ListInvoicesByStatus(c *gin.Context) {
	invs, err := h.usecase.ListByStatus(c.Request.Context(), entities.InvoiceStatus(c.Param("status")))
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoices(invs))
}

// UpdateInvoice godoc
// @Summary      Update invoice
// @Description  Taxes are recomputed with the supplied inter_state flag; status is left untouched.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id           path      string                  true   "Invoice ID"
// @Param        inter_state  query     bool                    false  "Inter-state supply"
// @Param        invoice      body      request.InvoiceRequest  true   "Invoice"
// @Success      200          {object}  response.InvoiceResponse
// @Failure      400          {object}  pkg.HTTPError
// @Failure      404          {object}  pkg.HTTPError
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	in, interState, ok := bindInvoice(c)
	if !ok {
		return
	}

	inv, err := h.usecase.UpdateInvoice(c.Request.Context(), c.Param("id"), in, interState)
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// ReconcileInvoice godoc
// @Summary      Recompute invoice status from its payments
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.InvoiceResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /invoices/{id}/reconcile [post]
func (h *InvoiceHandler) ReconcileInvoice(c *gin.Context) {
	id := c.Param("id")
	inv, err := h.usecase.Reconcile(c.Request.Context(), id)
	if err != nil {
		log.Printf("[invoice][handler] reconcile failed invoice_id=%s err=%v", id, err)
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// GetInvoiceBalance godoc
// @Summary      Paid and outstanding amounts of an invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.InvoiceBalanceResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /invoices/{id}/balance [get]
func (h *InvoiceHandler) GetInvoiceBalance(c *gin.Context) {
	b, err := h.usecase.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromInvoiceBalance(b))
}

// DeleteInvoice godoc
// @Summary      Delete invoice
// @Tags         invoices
// @Param        id   path  string  true  "Invoice ID"
// @Success      204
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.usecase.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapInvoiceError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func bindInvoice(c *gin.Context) (usecase.InvoiceInput, bool, bool) {
	interState, ok := interStateQuery(c)
	if !ok {
		writeError(c, errInvalidInterState)
		return usecase.InvoiceInput{}, false, false
	}

	var payload request.InvoiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidInvoicePayload)
		return usecase.InvoiceInput{}, false, false
	}
	in, err := payload.ToInput()
	if err != nil {
		writeError(c, pkg.NewDomainErrorSimple("INVALID_DUE_DATE", "due_date must be YYYY-MM-DD or RFC 3339", http.StatusBadRequest))
		return usecase.InvoiceInput{}, false, false
	}
	return in, interState, true
}

func mapInvoiceError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInvoiceID):
		return errInvalidRequest
	case errors.Is(err, usecase.ErrInvoiceNotFound):
		return pkg.NewDomainErrorSimple("INVOICE_NOT_FOUND", "Invoice not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_INVOICE_STATUS", "Status must be PENDING, PAID or OVERDUE", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvoiceHasPayments):
		return pkg.NewDomainErrorSimple("INVOICE_HAS_PAYMENTS", "Invoice has recorded payments", http.StatusConflict)
	default:
		return mapCommonError(err)
	}
}
