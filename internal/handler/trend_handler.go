package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/models"
	"github.com/mingshu/tutor-api/internal/service"
	"github.com/mingshu/tutor-api/pkg/response"
)

type trendService interface {
	Summary(ctx context.Context, studentID string) (*models.TrendSummary, error)
}

type trendExportService interface {
	Generate(ctx context.Context, studentID string, format service.ExportFormat) (*service.ExportResult, error)
}

// TrendHandler exposes trend summary and export endpoints.
type TrendHandler struct {
	trends  trendService
	exports trendExportService
}

// NewTrendHandler constructs TrendHandler.
func NewTrendHandler(trends trendService, exports trendExportService) *TrendHandler {
	return &TrendHandler{trends: trends, exports: exports}
}

// Summary godoc
// @Summary Get a student's score trend summary
// @Tags Trends
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/trend [get]
func (h *TrendHandler) Summary(c *gin.Context) {
	summary, err := h.trends.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Export godoc
// @Summary Export a student's trend report
// @Tags Trends
// @Produce text/csv,application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf (default pdf)"
// @Success 200 {file} binary
// @Router /students/{id}/trend/export [get]
func (h *TrendHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "pdf"))
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
