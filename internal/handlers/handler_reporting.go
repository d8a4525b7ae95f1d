package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to donor and ledger reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/donors", h.getDonorRanking)
		reports.GET("/summary", h.getLedgerSummary)
	}
}

// getDonorRanking godoc
// @Summary Rank donors
// @Description Ranks donors across all projects by total amount or by number of donations
// @Tags reports
// @Produce  json
// @Param   rankBy query string false "amount or count" default(amount)
// @Param   limit query int false "Number of donors" default(10)
// @Success 200 {object} dto.DonorRankingResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate donor ranking"
// @Security BearerAuth
// @Router /reports/donors [get]
func (h *reportingHandler) getDonorRanking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.DonorRankingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for DonorRanking", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	donors, err := h.reportingService.DonorRanking(c.Request.Context(), params.RankBy, params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "generate donor ranking")
		return
	}
	c.JSON(http.StatusOK, dto.ToDonorRankingResponse(params.RankBy, donors))
}

// getLedgerSummary godoc
// @Summary Ledger summary
// @Description Returns ledger-wide totals
// @Tags reports
// @Produce  json
// @Success 200 {object} domain.LedgerSummary
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate ledger summary"
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *reportingHandler) getLedgerSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.reportingService.LedgerSummary(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "generate ledger summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
