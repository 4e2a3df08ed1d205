// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/middleware"
	"github.com/yigit/hireloop/internal/pkg/helpers"
)

// parseIDParam reads a positive int64 path parameter, writing a 400 when it is malformed
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive integer")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentActor returns the authenticated caller or writes a 401
func currentActor(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return models.Actor{}, false
	}
	return actor, true
}

func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}

func respondPage(ctx *gin.Context, items interface{}, total int64, page, size int) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(helpers.NewPaginatedResponse(items, total, page, size), ""))
}

func badQuery(ctx *gin.Context, field, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid query parameter").
		WithField(field).
		WithDetails(details)
	ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// optionalStatus converts an empty query value to nil
func optionalStatus(raw string) *models.ApplicationStatus {
	if raw == "" {
		return nil
	}
	s := models.ApplicationStatus(raw)
	return &s
}
