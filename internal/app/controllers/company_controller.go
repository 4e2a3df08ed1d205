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

// CompanyController handles company-related operations
type CompanyController struct {
	companyService services.CompanyService
	jobService     services.JobService
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService services.CompanyService, jobService services.JobService) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		jobService:     jobService,
	}
}

// CreateCompany handles company creation
// @Summary Create a company
// @Description Creates a company. An employer creating a company becomes its owner.
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCompanyRequest true "Company information"
// @Success 201 {object} dto.APIResponse{data=models.Company} "Company created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - only employers and admins"
// @Failure 409 {object} dto.ErrorResponse "Company name already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /companies [post]
func (c *CompanyController) CreateCompany(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateCompanyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	company, err := c.companyService.CreateCompany(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, company, "Company created")
}

// GetCompanyByID retrieves a company by ID
// @Summary Get company details
// @Tags companies
// @Produce json
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Company} "Company retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid company ID format"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id} [get]
func (c *CompanyController) GetCompanyByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	company, err := c.companyService.GetCompanyByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, company, "")
}

// SearchCompanies lists companies matching the filters
// @Summary Search companies
// @Description Name and location match as case-insensitive substrings, industry matches exactly
// @Tags companies
// @Produce json
// @Param name query string false "Name contains"
// @Param industry query string false "Industry"
// @Param location query string false "Location contains"
// @Param verified query bool false "Verified only"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Company}} "Companies"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /companies [get]
func (c *CompanyController) SearchCompanies(ctx *gin.Context) {
	var query dto.CompanySearchRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	companies, total, err := c.companyService.SearchCompanies(ctx.Request.Context(), models.CompanyFilter{
		Name:     query.Name,
		Industry: query.Industry,
		Location: query.Location,
		Verified: query.Verified,
		Page:     page,
		Size:     size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, companies, total, page, size)
}

// UpdateCompany updates a company
// @Summary Update a company
// @Description Owner, company employers or admins may update
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Param request body dto.UpdateCompanyRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Company} "Company updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Failure 409 {object} dto.ErrorResponse "Company name already taken"
// @Router /companies/{id} [put]
func (c *CompanyController) UpdateCompany(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	company, err := c.companyService.UpdateCompany(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, company, "Company updated")
}

// DeleteCompany soft-deletes a company
// @Summary Delete a company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Company deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id} [delete]
func (c *CompanyController) DeleteCompany(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.companyService.DeleteCompany(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Company deleted")
}

// VerifyCompany sets the verified flag
// @Summary Verify a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Param request body dto.VerifyCompanyRequest true "Verified flag"
// @Success 200 {object} dto.APIResponse{data=models.Company} "Company updated"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id}/verify [patch]
func (c *CompanyController) VerifyCompany(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.VerifyCompanyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	company, err := c.companyService.VerifyCompany(ctx.Request.Context(), actor, id, *req.Verified)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, company, "Company updated")
}

// ListCompanyJobs lists the jobs of a company
// @Summary List company jobs
// @Description Anonymous callers see open jobs only; company members and admins see every status
// @Tags companies
// @Produce json
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Param status query string false "Job status" Enums(DRAFT, OPEN, PAUSED, CLOSED, FILLED)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Job}} "Jobs"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id}/jobs [get]
func (c *CompanyController) ListCompanyJobs(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var query dto.JobSearchRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	filter := models.JobFilter{Page: page, Size: size}
	if query.Status != "" {
		status := models.JobStatus(query.Status)
		filter.Status = &status
	}

	jobs, total, err := c.jobService.ListCompanyJobs(ctx.Request.Context(), middleware.OptionalActor(ctx), id, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, jobs, total, page, size)
}
