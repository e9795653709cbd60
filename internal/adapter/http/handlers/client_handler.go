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

var errInvalidClientPayload = pkg.NewDomainErrorSimple("INVALID_CLIENT_INPUT", "Invalid client payload", http.StatusBadRequest)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	usecase usecase.IClientUseCase
}

func NewClientHandler(uc usecase.IClientUseCase) *ClientHandler {
	return &ClientHandler{usecase: uc}
}

// CreateClient godoc
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      request.ClientRequest  true  "Client"
// @Success      201     {object}  response.ClientResponse
// @Failure      400     {object}  pkg.HTTPError
// @Router       /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var payload request.ClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidClientPayload)
		return
	}

	created, err := h.usecase.CreateClient(c.Request.Context(), payload.ToEntity())
	if err != nil {
		writeError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromClient(created))
}

// ListClients godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Success      200  {array}  response.ClientResponse
// @Router       /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.usecase.List(c.Request.Context())
	if err != nil {
		writeError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClients(clients))
}

// GetClient godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.ClientResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClient(client))
}

// UpdateClient godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      string                 true  "Client ID"
// @Param        client  body      request.ClientRequest  true  "Client"
// @Success      200     {object}  response.ClientResponse
// @Failure      404     {object}  pkg.HTTPError
// @Router       /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var payload request.ClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidClientPayload)
		return
	}

	updated, err := h.usecase.UpdateClient(c.Request.Context(), c.Param("id"), payload.ToEntity())
	if err != nil {
		writeError(c, mapClientError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromClient(updated))
}

// DeleteClient godoc
// @Summary      Delete client
// @Tags         clients
// @Param        id   path  string  true  "Client ID"
// @Success      204
// @Failure      409  {object}  pkg.HTTPError
// @Router       /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id := c.Param("id")
	if err := h.usecase.DeleteClient(c.Request.Context(), id); err != nil {
		log.Printf("[client][handler] delete failed client_id=%s err=%v", id, err)
		writeError(c, mapClientError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func mapClientError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidClientName):
		return errInvalidClientPayload
	case errors.Is(err, usecase.ErrClientHasDependents):
		return pkg.NewDomainErrorSimple("CLIENT_HAS_DEPENDENTS", "Client still has estimates or invoices", http.StatusConflict)
	default:
		return mapCommonError(err)
	}
}
