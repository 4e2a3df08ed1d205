package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/services"
	"github.com/yigit/hireloop/internal/middleware"
)

// AnalyticsController serves dashboards
type AnalyticsController struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analyticsService services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// PlatformOverview returns platform-wide counters
// @Summary Platform overview
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.PlatformOverview} "Overview"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /analytics/overview [get]
func (c *AnalyticsController) PlatformOverview(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	overview, err := c.analyticsService.PlatformOverview(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, overview, "")
}

// CompanyDashboard returns hiring metrics for a company
// @Summary Company dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.CompanyDashboard} "Dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /analytics/companies/{id} [get]
func (c *AnalyticsController) CompanyDashboard(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	dash, err := c.analyticsService.CompanyDashboard(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dash, "")
}

// ConsultantDashboard returns placement metrics for a consultant
// @Summary Consultant dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultant ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.ConsultantDashboard} "Dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Consultant not found"
// @Router /analytics/consultants/{id} [get]
func (c *AnalyticsController) ConsultantDashboard(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	dash, err := c.analyticsService.ConsultantDashboard(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dash, "")
}
