package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/app/services"
	"github.com/yigit/hireloop/internal/middleware"
	"github.com/yigit/hireloop/internal/pkg/helpers"
)

// ApplicationController handles job applications and their workflow
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

func withNextStatuses(app *models.Application) *dto.ApplicationDetailResponse {
	return &dto.ApplicationDetailResponse{
		Application:  app,
		NextStatuses: models.NextStatuses(app.Status),
	}
}

// Apply submits an application
// @Summary Apply to a job
// @Description Requires a candidate profile. The job must be open and not past its closing date.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationDetailResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Job not open, limit reached or no profile"
// @Failure 403 {object} dto.ErrorResponse "Candidates only"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	app, err := c.applicationService.Apply(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, withNextStatuses(app), "Application submitted")
}

// GetApplication returns an application
// @Summary Get an application
// @Description Includes the statuses the application can move to next
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationDetailResponse} "Application"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	app, err := c.applicationService.GetApplication(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, withNextStatuses(app), "")
}

// ListMyApplications lists the caller's applications
// @Summary My applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Applications"
// @Failure 403 {object} dto.ErrorResponse "Candidates only"
// @Router /applications/me [get]
func (c *ApplicationController) ListMyApplications(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var query dto.ApplicationListRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	apps, total, err := c.applicationService.ListMyApplications(ctx.Request.Context(), actor, optionalStatus(query.Status), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, apps, total, page, size)
}

// ListJobApplications lists the applications for a job
// @Summary Applications for a job
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Param status query string false "Status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Applications"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id}/applications [get]
func (c *ApplicationController) ListJobApplications(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var query dto.ApplicationListRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	apps, total, err := c.applicationService.ListJobApplications(ctx.Request.Context(), actor, jobID, optionalStatus(query.Status), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, apps, total, page, size)
}

// ChangeStatus moves an application through the workflow
// @Summary Change application status
// @Description Candidates may only withdraw. Employers of the job's company, the assigned consultant and admins make every other transition.
// @Description INTERVIEW_SCHEDULED needs a future interviewAt, REJECTED needs a rejectionReason, HIRED books the placement.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID" Format(int64) minimum(1)
// @Param request body dto.UpdateApplicationStatusRequest true "Transition"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationDetailResponse} "Status changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid transition or missing data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application changed concurrently"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) ChangeStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	app, err := c.applicationService.ChangeStatus(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, withNextStatuses(app), "Status changed")
}

// GetHistory returns the status history of an application
// @Summary Application status history
// @Description Oldest entry first
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.StatusHistory} "History"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/history [get]
func (c *ApplicationController) GetHistory(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	history, err := c.applicationService.GetHistory(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, history, "")
}

// RateApplication rates an application
// @Summary Rate an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID" Format(int64) minimum(1)
// @Param request body dto.RateApplicationRequest true "Rating 1-5"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Rated"
// @Failure 400 {object} dto.ErrorResponse "Rating out of range"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/rating [put]
func (c *ApplicationController) RateApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RateApplicationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	app, err := c.applicationService.RateApplication(ctx.Request.Context(), actor, id, req.Rating)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, app, "Application rated")
}
