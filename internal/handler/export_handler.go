package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/pkg/response"
)

// ExportHandler serves the verified issue report download.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: svc}
}

// Export streams the PDF report for an exportable issue. The gate is a
// property of the issue, not the caller, so the route is public.
func (h *ExportHandler) Export(c *gin.Context) {
	payload, filename, err := h.exports.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
