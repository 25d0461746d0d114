package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// ReportingHandler handles reporting-related HTTP requests
type ReportingHandler struct {
	reportingService portssvc.ReportingService
}

// NewReportingHandler creates a new reporting handler
func NewReportingHandler(reportingService portssvc.ReportingService) *ReportingHandler {
	return &ReportingHandler{
		reportingService: reportingService,
	}
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := NewReportingHandler(reportingService)
	rg.GET("/reports/summary", h.GetSummary)
}

// GetSummary godoc
// @Summary Expense totals by status and type
// @Description Finance, managers and admins only.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.ExpenseSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/summary [get]
func (h *ReportingHandler) GetSummary(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	summary, err := h.reportingService.Summary(c.Request.Context(), identity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
