package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/pkg/response"
)

// DashboardHandler exposes the operator aggregation report.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: svc}
}

// Overview returns current counts by status, category and area.
func (h *DashboardHandler) Overview(c *gin.Context) {
	res, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// ExportCSV streams the category breakdown as CSV.
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	payload, filename, err := h.dashboard.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
