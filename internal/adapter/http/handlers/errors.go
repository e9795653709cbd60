package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mis_invoicing/internal/domain/entities"
	"mis_invoicing/internal/usecase"
	"mis_invoicing/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidRequest    = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	errInvalidInterState = pkg.NewDomainErrorSimple("INVALID_INTER_STATE", "inter_state must be a boolean", http.StatusBadRequest)
)

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// mapCommonError classifies the errors every resource can surface. Handler
// specific mappers run first and fall back to it.
func mapCommonError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidClientID):
		return pkg.NewDomainErrorSimple("INVALID_CLIENT_ID", "client_id is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidAmount):
		return pkg.NewDomainErrorSimple("INVALID_AMOUNT", "Amount must not be negative", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrClientNotFound):
		return pkg.NewDomainErrorSimple("CLIENT_NOT_FOUND", "Client not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrLockNotAcquired):
		return pkg.NewDomainErrorSimple("INVOICE_BUSY", "Invoice is being reconciled, retry later", http.StatusConflict)
	case errors.Is(err, entities.ErrNotFound):
		return pkg.NewDomainErrorSimple("NOT_FOUND", "Resource not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrHasDependents):
		return pkg.NewDomainErrorSimple("HAS_DEPENDENTS", "Resource has dependent records", http.StatusConflict)
	case errors.Is(err, entities.ErrInvalidState):
		return pkg.NewDomainError("INVALID_STATE", "Operation not allowed in the current state", err, http.StatusBadRequest)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

// interStateQuery reads the optional inter_state flag; absent means intra-state.
func interStateQuery(c *gin.Context) (bool, bool) {
	raw := c.Query("inter_state")
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
