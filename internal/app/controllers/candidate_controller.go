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

// CandidateController handles candidate profiles
type CandidateController struct {
	candidateService services.CandidateService
}

// NewCandidateController creates a new CandidateController
func NewCandidateController(candidateService services.CandidateService) *CandidateController {
	return &CandidateController{candidateService: candidateService}
}

// CreateMyProfile creates the caller's profile
// @Summary Create my candidate profile
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CandidateProfileRequest true "Profile"
// @Success 201 {object} dto.APIResponse{data=models.CandidateProfile} "Profile created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Candidates only"
// @Failure 409 {object} dto.ErrorResponse "Profile already exists"
// @Router /candidates/me [post]
func (c *CandidateController) CreateMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CandidateProfileRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	profile, err := c.candidateService.CreateProfile(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, profile, "Profile created")
}

// GetMyProfile returns the caller's profile
// @Summary Get my candidate profile
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.CandidateProfile} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /candidates/me [get]
func (c *CandidateController) GetMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	profile, err := c.candidateService.GetMyProfile(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, profile, "")
}

// UpdateMyProfile replaces the caller's profile fields
// @Summary Update my candidate profile
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CandidateProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.CandidateProfile} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /candidates/me [put]
func (c *CandidateController) UpdateMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CandidateProfileRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	profile, err := c.candidateService.UpdateMyProfile(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, profile, "Profile updated")
}

// DeleteMyProfile soft-deletes the caller's profile
// @Summary Delete my candidate profile
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Profile deleted"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /candidates/me [delete]
func (c *CandidateController) DeleteMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	if err := c.candidateService.DeleteMyProfile(ctx.Request.Context(), actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Profile deleted")
}

// UploadResume stores a resume for the caller
// @Summary Upload my resume
// @Description Accepts pdf, doc or docx up to 10MB. Replaces any previous resume.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "Resume file"
// @Success 200 {object} dto.APIResponse{data=models.CandidateProfile} "Resume uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or unsupported file"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /candidates/me/resume [post]
func (c *CandidateController) UploadResume(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	file, err := ctx.FormFile("resume")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Resume file is required").WithField("resume")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	profile, err := c.candidateService.UploadResume(ctx.Request.Context(), actor, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, profile, "Resume uploaded")
}

// GetProfile returns a candidate profile
// @Summary Get a candidate profile
// @Description Candidates may only view their own profile
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.CandidateProfile} "Profile"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /candidates/{id} [get]
func (c *CandidateController) GetProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.candidateService.GetProfile(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, profile, "")
}

// SearchProfiles searches candidates
// @Summary Search candidates
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param skill query string false "Skill"
// @Param location query string false "Location contains"
// @Param minExperience query int false "Minimum years of experience"
// @Param openToWork query bool false "Open to work"
// @Param keyword query string false "Headline or summary contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.CandidateProfile}} "Profiles"
// @Failure 403 {object} dto.ErrorResponse "Employers, consultants and admins only"
// @Router /candidates [get]
func (c *CandidateController) SearchProfiles(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var query dto.CandidateSearchRequest
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	profiles, total, err := c.candidateService.SearchProfiles(ctx.Request.Context(), actor, models.CandidateFilter{
		Skill:         query.Skill,
		Location:      query.Location,
		MinExperience: query.MinExperience,
		OpenToWork:    query.OpenToWork,
		Keyword:       query.Keyword,
		Page:          page,
		Size:          size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, profiles, total, page, size)
}
