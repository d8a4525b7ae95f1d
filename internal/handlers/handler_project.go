package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// projectHandler handles HTTP requests related to projects.
type projectHandler struct {
	ledgerService    portssvc.LedgerSvcFacade
	reportingService portssvc.ReportingService
}

// newProjectHandler creates a new projectHandler.
func newProjectHandler(ls portssvc.LedgerSvcFacade, rs portssvc.ReportingService) *projectHandler {
	return &projectHandler{
		ledgerService:    ls,
		reportingService: rs,
	}
}

// registerProjectRoutes registers routes related to projects and their records.
func registerProjectRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, reportingService portssvc.ReportingService) {
	h := newProjectHandler(ledgerService, reportingService)

	projects := rg.Group("/projects")
	{
		projects.POST("", h.createProject)
		projects.GET("", h.listProjects)
		projects.GET("/:projectID", h.getProject)
		projects.PATCH("/:projectID/status", h.toggleProjectStatus)
		projects.GET("/:projectID/balance", h.getBalance)
		projects.GET("/:projectID/stats", h.getProjectStats)
	}

	registerRecordRoutes(projects, ledgerService)
}

// createProject godoc
// @Summary Create a project
// @Description Creates a fundraising project. Only the ledger owner may call this.
// @Tags projects
// @Accept  json
// @Produce  json
// @Param   project body dto.CreateProjectRequest true "Project details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not the owner"
// @Failure 500 {object} map[string]string "Failed to create project"
// @Security BearerAuth
// @Router /projects [post]
func (h *projectHandler) createProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProject", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := requireCaller(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create project", slog.String("project_name", req.Name), slog.String("beneficiary", req.Beneficiary))

	event, err := h.ledgerService.CreateProject(c.Request.Context(), req, caller)
	if err != nil {
		respondWithError(c, logger, err, "create project")
		return
	}

	logger.Info("Project created successfully", slog.Int64("project_id", event.ProjectID))
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listProjects godoc
// @Summary List projects
// @Description Retrieves projects in id order
// @Tags projects
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListProjectsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list projects"
// @Security BearerAuth
// @Router /projects [get]
func (h *projectHandler) listProjects(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListProjectsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListProjects", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	projects, err := h.ledgerService.ListProjects(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondWithError(c, logger, err, "list projects")
		return
	}
	total, err := h.ledgerService.GetProjectCount(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "list projects")
		return
	}

	c.JSON(http.StatusOK, dto.ToListProjectResponse(projects, total))
}

// getProject godoc
// @Summary Get a project
// @Description Retrieves a project with its derived balances
// @Tags projects
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} map[string]string "Invalid project ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to retrieve project"
// @Security BearerAuth
// @Router /projects/{projectID} [get]
func (h *projectHandler) getProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}

	project, err := h.ledgerService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, logger, err, "retrieve project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// toggleProjectStatus godoc
// @Summary Toggle project status
// @Description Flips a project between active and inactive. Only the ledger owner may call this.
// @Tags projects
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Success 200 {object} dto.EventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not the owner"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to toggle project status"
// @Security BearerAuth
// @Router /projects/{projectID}/status [patch]
func (h *projectHandler) toggleProjectStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}
	caller, ok := requireCaller(c, logger)
	if !ok {
		return
	}

	event, err := h.ledgerService.ToggleProjectStatus(c.Request.Context(), projectID, caller)
	if err != nil {
		respondWithError(c, logger, err, "toggle project status")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// getBalance godoc
// @Summary Get project balance
// @Description Returns the available and withdrawn amounts of a project
// @Tags projects
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Security BearerAuth
// @Router /projects/{projectID}/balance [get]
func (h *projectHandler) getBalance(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}

	available, err := h.ledgerService.GetAvailableBalance(ctx, projectID)
	if err != nil {
		respondWithError(c, logger, err, "retrieve balance")
		return
	}
	withdrawn, err := h.ledgerService.GetWithdrawnAmount(ctx, projectID)
	if err != nil {
		respondWithError(c, logger, err, "retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{
		ProjectID:        projectID,
		AvailableBalance: available,
		WithdrawnAmount:  withdrawn,
	})
}

// getProjectStats godoc
// @Summary Get project statistics
// @Description Summarises donations, withdrawals and expenses of a project
// @Tags projects
// @Produce  json
// @Param   projectID path int true "Project ID"
// @Success 200 {object} domain.ProjectStats
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to retrieve project statistics"
// @Security BearerAuth
// @Router /projects/{projectID}/stats [get]
func (h *projectHandler) getProjectStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID, ok := int64Param(c, logger, "projectID")
	if !ok {
		return
	}

	stats, err := h.reportingService.ProjectStats(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, logger, err, "retrieve project statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
