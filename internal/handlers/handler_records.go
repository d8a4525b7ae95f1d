package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/SscSPs/charity_donation_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

const (
	donationsTokenKind = "donations"
	expensesTokenKind  = "expenses"
)

// recordHandler handles donations, withdrawals and expenses of a project.
type recordHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// registerRecordRoutes registers the per-project record routes on the projects group.
func registerRecordRoutes(projects *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &recordHandler{ledgerService: ledgerService}

	records := projects.Group("/:projectID")
	{
		records.POST("/donations", h.donate)
		records.GET("/donations", h.listDonations)
		records.GET("/donations/:index", h.getDonation)

		records.POST("/withdrawals", h.withdrawFunds)
		records.GET("/withdrawals", h.listWithdrawals)

		records.POST("/expenses", h.recordExpense)
		records.GET("/expenses", h.listExpenses)
		records.GET("/expenses/:index", h.getExpense)
	}
}

// startIndex resolves the optional nextToken into the first index of the page.
func startIndex(c *gin.Context, logger *slog.Logger, token *string, kind string, projectID int64) (int64, bool) {
	if token == nil || *token == "" {
		return 0, true
	}
	from, err := pagination.DecodeIndexToken(*token, kind, projectID)
	if err != nil {
		logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nextToken: " + err.Error()})
		return 0, false
	}
	return from, true
}

// donate godoc
// @Summary Donate to a project
// @Description Records a donation from the caller. Amount is in wei and must be positive.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   donation body dto.DonateRequest true "Donation"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 409 {object} map[string]string "Project is not active"
// @Failure 500 {object} map[string]string "Failed to record donation"
// @Security BearerAuth
// @Router /projects/{projectID}/donations [post]
func (h *recordHandler) donate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Donate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	caller, ok := requireCaller(c, logger)
	if !ok {
		return
	}

	event, err := h.ledgerService.Donate(c.Request.Context(), projectID, req, caller)
	if err != nil {
		respondWithError(c, logger, err, "record donation")
		return
	}

	logger.Info("Donation received", slog.Int64("project_id", projectID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listDonations godoc
// @Summary List donations of a project
// @Description Returns a page of donations in index order together with the total count
// @Tags donations
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListDonationsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to list donations"
// @Security BearerAuth
// @Router /projects/{projectID}/donations [get]
func (h *recordHandler) listDonations(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	var params dto.ListRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDonations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, ok := startIndex(c, logger, params.NextToken, donationsTokenKind, projectID)
	if !ok {
		return
	}

	count, err := h.ledgerService.GetDonationCount(ctx, projectID)
	if err != nil {
		respondWithError(c, logger, err, "list donations")
		return
	}
	donations, err := h.ledgerService.ListDonations(ctx, projectID, from, params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "list donations")
		return
	}

	c.JSON(http.StatusOK, dto.ListDonationsResponse{
		Count:     count,
		Donations: dto.ToDonationResponses(donations),
		NextToken: pagination.NextIndexToken(donationsTokenKind, projectID, from, len(donations), count),
	})
}

// getDonation godoc
// @Summary Get one donation
// @Tags donations
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   index path int true "Donation index"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project or donation not found"
// @Failure 500 {object} map[string]string "Failed to retrieve donation"
// @Security BearerAuth
// @Router /projects/{projectID}/donations/{index} [get]
func (h *recordHandler) getDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	index, ok := int64Param(c, logger, "index")
	if !ok {
		return
	}

	donation, err := h.ledgerService.GetDonation(c.Request.Context(), projectID, index)
	if err != nil {
		respondWithError(c, logger, err, "retrieve donation")
		return
	}
	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// withdrawFunds godoc
// @Summary Withdraw project funds
// @Description Pays out part of the available balance to the beneficiary. Only the beneficiary may call this.
// @Tags withdrawals
// @Accept  json
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   withdrawal body dto.WithdrawFundsRequest true "Withdrawal"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not the beneficiary"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 422 {object} map[string]string "Insufficient available balance"
// @Failure 502 {object} map[string]string "Payout could not be sent"
// @Failure 500 {object} map[string]string "Failed to withdraw funds"
// @Security BearerAuth
// @Router /projects/{projectID}/withdrawals [post]
func (h *recordHandler) withdrawFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	var req dto.WithdrawFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for WithdrawFunds", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	caller, ok := requireCaller(c, logger)
	if !ok {
		return
	}

	event, err := h.ledgerService.WithdrawFunds(c.Request.Context(), projectID, req, caller)
	if err != nil {
		respondWithError(c, logger, err, "withdraw funds")
		return
	}

	logger.Info("Funds withdrawn", slog.Int64("project_id", projectID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listWithdrawals godoc
// @Summary List withdrawals of a project
// @Tags withdrawals
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Success 200 {array} dto.WithdrawalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to list withdrawals"
// @Security BearerAuth
// @Router /projects/{projectID}/withdrawals [get]
func (h *recordHandler) listWithdrawals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}

	withdrawals, err := h.ledgerService.ListWithdrawals(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, logger, err, "list withdrawals")
		return
	}
	c.JSON(http.StatusOK, dto.ToWithdrawalResponses(withdrawals))
}

// recordExpense godoc
// @Summary Record an expense
// @Description Logs how project funds were spent. Only the beneficiary may call this; no funds move.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   expense body dto.RecordExpenseRequest true "Expense"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not the beneficiary"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to record expense"
// @Security BearerAuth
// @Router /projects/{projectID}/expenses [post]
func (h *recordHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	caller, ok := requireCaller(c, logger)
	if !ok {
		return
	}

	event, err := h.ledgerService.RecordExpense(c.Request.Context(), projectID, req, caller)
	if err != nil {
		respondWithError(c, logger, err, "record expense")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listExpenses godoc
// @Summary List expenses of a project
// @Description Returns a page of expenses in index order together with the total count
// @Tags expenses
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to list expenses"
// @Security BearerAuth
// @Router /projects/{projectID}/expenses [get]
func (h *recordHandler) listExpenses(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	var params dto.ListRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListExpenses", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, ok := startIndex(c, logger, params.NextToken, expensesTokenKind, projectID)
	if !ok {
		return
	}

	count, err := h.ledgerService.GetExpenseCount(ctx, projectID)
	if err != nil {
		respondWithError(c, logger, err, "list expenses")
		return
	}
	expenses, err := h.ledgerService.ListExpenses(ctx, projectID, from, params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "list expenses")
		return
	}

	c.JSON(http.StatusOK, dto.ListExpensesResponse{
		Count:     count,
		Expenses:  dto.ToExpenseResponses(expenses),
		NextToken: pagination.NextIndexToken(expensesTokenKind, projectID, from, len(expenses), count),
	})
}

// getExpense godoc
// @Summary Get one expense
// @Tags expenses
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Param   index path int true "Expense index"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project or expense not found"
// @Failure 500 {object} map[string]string "Failed to retrieve expense"
// @Security BearerAuth
// @Router /projects/{projectID}/expenses/{index} [get]
func (h *recordHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	index, ok := int64Param(c, logger, "index")
	if !ok {
		return
	}

	expense, err := h.ledgerService.GetExpense(c.Request.Context(), projectID, index)
	if err != nil {
		respondWithError(c, logger, err, "retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
