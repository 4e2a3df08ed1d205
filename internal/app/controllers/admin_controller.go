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

// AdminController handles user administration and system configuration
type AdminController struct {
	adminService services.AdminService
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

// GetMyProfile returns the caller's admin profile
// @Summary My admin profile
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AdminProfile} "Profile"
// @Failure 404 {object} dto.ErrorResponse "No admin profile"
// @Router /admin/me [get]
func (c *AdminController) GetMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	profile, err := c.adminService.GetAdminProfile(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, profile, "")
}

// ListUsers searches users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role" Enums(ADMIN, EMPLOYER, CANDIDATE, CONSULTANT)
// @Param active query bool false "Active flag"
// @Param email query string false "Email contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}} "Users"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	var query dto.UserSearchRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	filter := models.UserFilter{Active: query.Active, Email: query.Email, Page: page, Size: size}
	if query.Role != "" {
		role := models.Role(query.Role)
		filter.Role = &role
	}

	users, total, err := c.adminService.ListUsers(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	respondPage(ctx, items, total, page, size)
}

// SetUserActive activates or deactivates a user
// @Summary Activate or deactivate a user
// @Description Deactivation revokes the user's refresh tokens. Admins cannot deactivate themselves.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID" Format(int64) minimum(1)
// @Param request body dto.SetUserActiveRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Cannot deactivate yourself"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/active [patch]
func (c *AdminController) SetUserActive(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetUserActiveRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	user, err := c.adminService.SetUserActive(ctx.Request.Context(), actor, id, *req.Active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewUserResponse(user), "User updated")
}

// ListConfigs lists every configuration entry
// @Summary List system configuration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.SystemConfiguration} "Configuration"
// @Router /admin/configs [get]
func (c *AdminController) ListConfigs(ctx *gin.Context) {
	c.listConfigs(ctx, false)
}

// GetConfig returns one configuration entry
// @Summary Get a configuration entry
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param key path string true "Configuration key"
// @Success 200 {object} dto.APIResponse{data=models.SystemConfiguration} "Entry"
// @Failure 404 {object} dto.ErrorResponse "Configuration not found"
// @Router /admin/configs/{key} [get]
func (c *AdminController) GetConfig(ctx *gin.Context) {
	c.getConfig(ctx, false)
}

// UpsertConfig creates or replaces a configuration entry
// @Summary Set a configuration entry
// @Description The value is validated against the supplied schema or, when none is given, the stored one
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Configuration key ([a-z0-9_.]+)"
// @Param request body dto.UpsertConfigRequest true "Value, description, visibility and optional JSON schema"
// @Success 200 {object} dto.APIResponse{data=models.SystemConfiguration} "Entry saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid key, schema or value"
// @Router /admin/configs/{key} [put]
func (c *AdminController) UpsertConfig(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.UpsertConfigRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	cfg, err := c.adminService.UpsertConfig(ctx.Request.Context(), actor, ctx.Param("key"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, cfg, "Configuration saved")
}

// DeleteConfig removes a configuration entry
// @Summary Delete a configuration entry
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param key path string true "Configuration key"
// @Success 200 {object} dto.APIResponse "Entry deleted"
// @Failure 404 {object} dto.ErrorResponse "Configuration not found"
// @Router /admin/configs/{key} [delete]
func (c *AdminController) DeleteConfig(ctx *gin.Context) {
	if err := c.adminService.DeleteConfig(ctx.Request.Context(), ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Configuration deleted")
}

// ListPublicConfigs lists public configuration entries
// @Summary Public configuration
// @Tags config
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.SystemConfiguration} "Public configuration"
// @Router /config/public [get]
func (c *AdminController) ListPublicConfigs(ctx *gin.Context) {
	c.listConfigs(ctx, true)
}

// GetPublicConfig returns a public configuration entry
// @Summary Public configuration entry
// @Tags config
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} dto.APIResponse{data=models.SystemConfiguration} "Entry"
// @Failure 404 {object} dto.ErrorResponse "Not found or not public"
// @Router /config/public/{key} [get]
func (c *AdminController) GetPublicConfig(ctx *gin.Context) {
	c.getConfig(ctx, true)
}

func (c *AdminController) listConfigs(ctx *gin.Context, publicOnly bool) {
	configs, err := c.adminService.ListConfigs(ctx.Request.Context(), publicOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, configs, "")
}

func (c *AdminController) getConfig(ctx *gin.Context, publicOnly bool) {
	cfg, err := c.adminService.GetConfig(ctx.Request.Context(), ctx.Param("key"), publicOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, cfg, "")
}
