package handlers

import (
	"net/http"

	response "mis_invoicing/internal/adapter/http/dto/response"
	"mis_invoicing/internal/usecase"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	usecase usecase.IDashboardUseCase
}

func NewDashboardHandler(uc usecase.IDashboardUseCase) *DashboardHandler {
	return &DashboardHandler{usecase: uc}
}

// GetStats godoc
// @Summary      Dashboard totals
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.DashboardStatsResponse
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.usecase.Stats(c.Request.Context())
	if err != nil {
		writeError(c, mapCommonError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromDashboardStats(stats))
}
