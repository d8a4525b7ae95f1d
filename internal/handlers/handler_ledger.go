package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves ledger-wide views.
type ledgerHandler struct {
	ledgerService portssvc.LedgerReaderSvc
}

func newLedgerHandler(ls portssvc.LedgerReaderSvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to the ledger as a whole.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.getLedgerInfo)
		ledger.GET("/events", h.listEvents)
	}
}

// getLedgerInfo godoc
// @Summary Get ledger info
// @Description Returns the owner, the number of projects and the funds held across all projects
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.LedgerInfoResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ledger not initialized"
// @Failure 500 {object} map[string]string "Failed to retrieve ledger info"
// @Security BearerAuth
// @Router /ledger [get]
func (h *ledgerHandler) getLedgerInfo(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	owner, err := h.ledgerService.GetOwner(ctx)
	if err != nil {
		respondWithError(c, logger, err, "retrieve ledger info")
		return
	}
	count, err := h.ledgerService.GetProjectCount(ctx)
	if err != nil {
		respondWithError(c, logger, err, "retrieve ledger info")
		return
	}
	balance, err := h.ledgerService.GetContractBalance(ctx)
	if err != nil {
		respondWithError(c, logger, err, "retrieve ledger info")
		return
	}

	c.JSON(http.StatusOK, dto.LedgerInfoResponse{
		Owner:           owner.String(),
		ProjectCount:    count,
		ContractBalance: balance,
	})
}

// listEvents godoc
// @Summary List ledger events
// @Description Returns events with a sequence greater than afterSequence, oldest first
// @Tags ledger
// @Produce  json
// @Param   afterSequence query int false "Return events after this sequence" default(0)
// @Param   limit query int false "Maximum number of events" default(100)
// @Success 200 {object} dto.ListEventsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list events"
// @Security BearerAuth
// @Router /ledger/events [get]
func (h *ledgerHandler) listEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEvents", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	events, err := h.ledgerService.ListEvents(c.Request.Context(), params.AfterSequence, params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "list events")
		return
	}

	resp := dto.ListEventsResponse{
		Events:       dto.ToEventResponses(events),
		LastSequence: params.AfterSequence,
	}
	if len(events) > 0 {
		resp.LastSequence = events[len(events)-1].Sequence
	}
	c.JSON(http.StatusOK, resp)
}
