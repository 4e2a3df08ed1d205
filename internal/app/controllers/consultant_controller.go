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

// ConsultantController handles recruitment consultants
type ConsultantController struct {
	consultantService services.ConsultantService
}

// NewConsultantController creates a new ConsultantController
func NewConsultantController(consultantService services.ConsultantService) *ConsultantController {
	return &ConsultantController{consultantService: consultantService}
}

// CreateMyProfile creates the caller's consultant profile
// @Summary Create my consultant profile
// @Description The commission rate starts at the platform default
// @Tags consultants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConsultantRequest true "Profile"
// @Success 201 {object} dto.APIResponse{data=models.Consultant} "Profile created"
// @Failure 403 {object} dto.ErrorResponse "Consultants only"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Router /consultants/me [post]
func (c *ConsultantController) CreateMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateConsultantRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	consultant, err := c.consultantService.CreateProfile(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, consultant, "Profile created")
}

// GetMyProfile returns the caller's consultant profile
// @Summary Get my consultant profile
// @Tags consultants
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Consultant} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /consultants/me [get]
func (c *ConsultantController) GetMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	consultant, err := c.consultantService.GetMyProfile(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, consultant, "")
}

// GetConsultant returns a consultant
// @Summary Get a consultant
// @Tags consultants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultant ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Consultant} "Consultant"
// @Failure 404 {object} dto.ErrorResponse "Consultant not found"
// @Router /consultants/{id} [get]
func (c *ConsultantController) GetConsultant(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	consultant, err := c.consultantService.GetConsultant(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, consultant, "")
}

// ListConsultants lists consultants
// @Summary List consultants
// @Tags consultants
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Active flag"
// @Param specialization query string false "Specialization"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Consultant}} "Consultants"
// @Router /consultants [get]
func (c *ConsultantController) ListConsultants(ctx *gin.Context) {
	var query dto.ConsultantListRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	consultants, total, err := c.consultantService.ListConsultants(ctx.Request.Context(), models.ConsultantFilter{
		Active:         query.Active,
		Specialization: query.Specialization,
		Page:           page,
		Size:           size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, consultants, total, page, size)
}

// UpdateConsultant updates a consultant profile
// @Summary Update a consultant
// @Description Consultants edit their bio and specializations; only admins change commission rate and active flag
// @Tags consultants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultant ID" Format(int64) minimum(1)
// @Param request body dto.UpdateConsultantRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Consultant} "Consultant updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid commission rate"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Consultant not found"
// @Router /consultants/{id} [put]
func (c *ConsultantController) UpdateConsultant(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateConsultantRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	consultant, err := c.consultantService.UpdateConsultant(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, consultant, "Consultant updated")
}

// ListPlacements lists the hires credited to a consultant
// @Summary List placements
// @Tags consultants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultant ID" Format(int64) minimum(1)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Placements"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /consultants/{id}/placements [get]
func (c *ConsultantController) ListPlacements(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	placements, total, err := c.consultantService.ListPlacements(ctx.Request.Context(), actor, id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, placements, total, page, size)
}
