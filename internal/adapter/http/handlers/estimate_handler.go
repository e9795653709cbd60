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

var errInvalidEstimatePayload = pkg.NewDomainErrorSimple("INVALID_ESTIMATE_INPUT", "Invalid estimate payload", http.StatusBadRequest)

// EstimateHandler handles HTTP requests for estimates and their conversion
// into invoices.
type EstimateHandler struct {
	usecase usecase.IEstimateUseCase
}

func NewEstimateHandler(uc usecase.IEstimateUseCase) *EstimateHandler {
	return &EstimateHandler{usecase: uc}
}

// CreateEstimate godoc
// @Summary      Create estimate
// @Description  GST (18%) is derived from the subtotal; status defaults to DRAFT.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        client_id  query     string                   true  "Client ID"
// @Param        estimate   body      request.EstimateRequest  true  "Estimate"
// @Success      201        {object}  response.EstimateResponse
// @Failure      400        {object}  pkg.HTTPError
// @Failure      404        {object}  pkg.HTTPError
// @Router       /estimates [post]
func (h *EstimateHandler) CreateEstimate(c *gin.Context) {
	in, ok := bindEstimate(c)
	if !ok {
		return
	}

	est, err := h.usecase.CreateEstimate(c.Request.Context(), c.Query("client_id"), in)
	if err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromEstimate(est))
}

// ListEstimates godoc
// @Summary      List estimates
// @Tags         estimates
// @Produce      json
// @Success      200  {array}  response.EstimateResponse
// @Router       /estimates [get]
func (h *EstimateHandler) ListEstimates(c *gin.Context) {
	ests, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromEstimates(ests))
}

// GetEstimate godoc
// @Summary      Get estimate
// @Tags         estimates
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.EstimateResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /estimates/{id} [get]
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
	est, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromEstimate(est))
}

// ListEstimatesByClient godoc
// @Summary      List estimates of a client
// @Tags         estimates
// @Produce      json
// @Param        client_id  path     string  true  "Client ID"
// @Success      200        {array}  response.EstimateResponse
// @Router       /estimates/client/{client_id} [get]
func (h *EstimateHandler) ListEstimatesByClient(c *gin.Context) {
	ests, err := h.usecase.ListByClientID(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromEstimates(ests))
}

// UpdateEstimate godoc
// @Summary      Update estimate
// @Description  Converted estimates are immutable; status only moves forward.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id        path      string                   true  "Estimate ID"
// @Param        estimate  body      request.EstimateRequest  true  "Estimate"
// @Success      200       {object}  response.EstimateResponse
// @Failure      400       {object}  pkg.HTTPError
// @Failure      404       {object}  pkg.HTTPError
// @Router       /estimates/{id} [put]
func (h *EstimateHandler) UpdateEstimate(c *gin.Context) {
	in, ok := bindEstimate(c)
	if !ok {
		return
	}

	est, err := h.usecase.UpdateEstimate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromEstimate(est))
}

// ConvertEstimate godoc
// @Summary      Convert an approved estimate into an invoice
// @Tags         estimates
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      201  {object}  response.InvoiceResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /estimates/{id}/convert [post]
func (h *EstimateHandler) ConvertEstimate(c *gin.Context) {
	id := c.Param("id")
	inv, err := h.usecase.ConvertToInvoice(c.Request.Context(), id)
	if err != nil {
		log.Printf("[estimate][handler] convert failed estimate_id=%s err=%v", id, err)
		writeError(c, mapEstimateError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromInvoice(inv))
}

// DeleteEstimate godoc
// @Summary      Delete estimate
// @Tags         estimates
// @Param        id   path  string  true  "Estimate ID"
// @Success      204
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /estimates/{id} [delete]
func (h *EstimateHandler) DeleteEstimate(c *gin.Context) {
	if err := h.usecase.DeleteEstimate(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapEstimateError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func bindEstimate(c *gin.Context) (usecase.EstimateInput, bool) {
	var payload request.EstimateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidEstimatePayload)
		return usecase.EstimateInput{}, false
	}
	in, err := payload.ToInput()
	if err != nil {
		writeError(c, pkg.NewDomainErrorSimple("INVALID_ESTIMATE_STATUS", "Unknown estimate status", http.StatusBadRequest))
		return usecase.EstimateInput{}, false
	}
	return in, true
}

func mapEstimateError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidEstimateID):
		return errInvalidRequest
	case errors.Is(err, usecase.ErrEstimateNotFound):
		return pkg.NewDomainErrorSimple("ESTIMATE_NOT_FOUND", "Estimate not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrEstimateNotApproved):
		return pkg.NewDomainErrorSimple("ESTIMATE_NOT_APPROVED", "Only approved estimates can be converted", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEstimateConverted):
		return pkg.NewDomainErrorSimple("ESTIMATE_CONVERTED", "Converted estimates cannot be modified", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidEstimateTransition):
		return pkg.NewDomainErrorSimple("INVALID_ESTIMATE_TRANSITION", "Estimate status cannot move backwards", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEstimateHasInvoice):
		return pkg.NewDomainErrorSimple("ESTIMATE_HAS_INVOICE", "Estimate was converted into an invoice", http.StatusConflict)
	default:
		return mapCommonError(err)
	}
}
