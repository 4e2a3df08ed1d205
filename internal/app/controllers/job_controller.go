package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/app/services"
	"github.com/yigit/hireloop/internal/middleware"
	"github.com/yigit/hireloop/internal/pkg/helpers"
)

// JobController handles job postings
type JobController struct {
	jobService services.JobService
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService) *JobController {
	return &JobController{jobService: jobService}
}

// jobFilterFromQuery converts search parameters; ok is false when a 400 was written
func jobFilterFromQuery(ctx *gin.Context, query *dto.JobSearchRequest, page, size int) (models.JobFilter, bool) {
	filter := models.JobFilter{
		Keyword:   query.Keyword,
		Location:  query.Location,
		CompanyID: query.CompanyID,
		Remote:    query.Remote,
		Skill:     query.Skill,
		Page:      page,
		Size:      size,
	}
	if query.EmploymentType != "" {
		t := models.EmploymentType(query.EmploymentType)
		filter.EmploymentType = &t
	}
	if query.ExperienceLevel != "" {
		l := models.ExperienceLevel(query.ExperienceLevel)
		filter.ExperienceLevel = &l
	}
	if query.Status != "" {
		s := models.JobStatus(query.Status)
		filter.Status = &s
	}
	if query.MinSalary != "" {
		min, err := decimal.NewFromString(query.MinSalary)
		if err != nil || min.IsNegative() {
			badQuery(ctx, "minSalary", "minSalary must be a non-negative number")
			return filter, false
		}
		filter.MinSalary = &min
	}
	return filter, true
}

// CreateJob handles job creation
// @Summary Create a job
// @Description Creates a job for a company. Set publish to open it immediately, otherwise it is saved as a draft.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job information"
// @Success 201 {object} dto.APIResponse{data=models.Job} "Job created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /jobs [post]
func (c *JobController) CreateJob(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.jobService.CreateJob(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, job, "Job created")
}

// GetJobByID retrieves a job
// @Summary Get job details
// @Description Jobs that are not open are only visible to their company, assigned consultant and admins
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job retrieved"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) GetJobByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.GetJobByID(ctx.Request.Context(), middleware.OptionalActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, job, "")
}

// SearchJobs searches jobs
// @Summary Search jobs
// @Description Without a status filter only open jobs are returned
// @Tags jobs
// @Produce json
// @Param keyword query string false "Title or description contains"
// @Param location query string false "Location contains"
// @Param employmentType query string false "Employment type" Enums(FULL_TIME, PART_TIME, CONTRACT, INTERNSHIP, TEMPORARY)
// @Param experienceLevel query string false "Experience level" Enums(ENTRY, MID, SENIOR, LEAD, EXECUTIVE)
// @Param status query string false "Job status" Enums(DRAFT, OPEN, PAUSED, CLOSED, FILLED)
// @Param companyId query int false "Company ID"
// @Param remote query bool false "Remote only"
// @Param minSalary query string false "Minimum salary (matches salaryMax >= minSalary)"
// @Param skill query string false "Required skill"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}} "Jobs"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 403 {object} dto.ErrorResponse "Non-open statuses need company membership"
// @Router /jobs [get]
func (c *JobController) SearchJobs(ctx *gin.Context) {
	var query dto.JobSearchRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	filter, ok := jobFilterFromQuery(ctx, &query, page, size)
	if !ok {
		return
	}

	jobs, total, err := c.jobService.SearchJobs(ctx.Request.Context(), middleware.OptionalActor(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, jobs, total, page, size)
}

// ListAssignedJobs lists the caller's assigned jobs
// @Summary My assigned jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}} "Jobs"
// @Failure 403 {object} dto.ErrorResponse "Consultants only"
// @Failure 404 {object} dto.ErrorResponse "Consultant profile not found"
// @Router /jobs/assigned [get]
func (c *JobController) ListAssignedJobs(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	jobs, total, err := c.jobService.ListAssignedJobs(ctx.Request.Context(), actor, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, jobs, total, page, size)
}

// UpdateJob updates a job
// @Summary Update a job
// @Description Closed and filled jobs cannot be edited
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Param request body dto.UpdateJobRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Job updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [put]
func (c *JobController) UpdateJob(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.jobService.UpdateJob(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, job, "Job updated")
}

// ChangeJobStatus moves a job through its lifecycle
// @Summary Change job status
// @Description DRAFT->OPEN, OPEN->PAUSED|CLOSED, PAUSED->OPEN|CLOSED. FILLED is set by hiring only.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Param request body dto.UpdateJobStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Status changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid transition"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Failure 409 {object} dto.ErrorResponse "Job changed concurrently"
// @Router /jobs/{id}/status [patch]
func (c *JobController) ChangeJobStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.jobService.ChangeJobStatus(ctx.Request.Context(), actor, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, job, "Job status changed")
}

// AssignConsultant assigns a consultant to a job
// @Summary Assign a consultant
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Param request body dto.AssignConsultantRequest true "Consultant"
// @Success 200 {object} dto.APIResponse{data=models.Job} "Consultant assigned"
// @Failure 400 {object} dto.ErrorResponse "Consultant inactive"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Job or consultant not found"
// @Router /jobs/{id}/consultant [put]
func (c *JobController) AssignConsultant(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignConsultantRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.jobService.AssignConsultant(ctx.Request.Context(), actor, id, req.ConsultantID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, job, "Consultant assigned")
}

// DeleteJob soft-deletes a job
// @Summary Delete a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Job deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [delete]
func (c *JobController) DeleteJob(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.jobService.DeleteJob(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Job deleted")
}
