package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/services"
)

// ExportHandler handles PDF export and email endpoints
type ExportHandler struct {
	export services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(export services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

func servePDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ProjectPDF renders one submission as a PDF report
func (h *ExportHandler) ProjectPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	data, err := h.export.ProjectPDF(id)
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, fmt.Sprintf("project_%s.pdf", id), data)
}

// RankedReportPDF renders the full ranked projects report
func (h *ExportHandler) RankedReportPDF(c *gin.Context) {
	data, err := h.export.RankedReportPDF()
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, "projects_report.pdf", data)
}

// TeamPDF renders a team roster PDF
func (h *ExportHandler) TeamPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
		return
	}

	data, err := h.export.TeamPDF(id)
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, fmt.Sprintf("team_%s.pdf", id), data)
}

// SendTelegramInvites emails the team's Telegram link to its members
func (h *ExportHandler) SendTelegramInvites(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team id"})
		return
	}

	results, err := h.export.SendTelegramInvites(id)
	if err != nil {
		respondError(c, err)
		return
	}

	sent := 0
	for _, r := range results {
		if r.Sent {
			sent++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(results),
		"sent":    sent,
		"failed":  len(results) - sent,
		"details": results,
	})
}
