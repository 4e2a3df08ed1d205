package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// errorRule maps a sentinel to its HTTP shape. Order matters: the first match wins.
type errorRule struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

var errorRules = []errorRule{
	// 401
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},

	// 403
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrNotParticipant, http.StatusForbidden, dto.ErrorCodeForbidden, "Not a participant in this conversation"},

	// 400
	{apperrors.ErrInvalidStatusTransition, http.StatusBadRequest, dto.ErrorCodeInvalidTransition, "Invalid status transition"},
	{apperrors.ErrInvalidJobTransition, http.StatusBadRequest, dto.ErrorCodeInvalidTransition, "Invalid job status transition"},
	{apperrors.ErrInvalidConfigValue, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Configuration value does not match its schema"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrJobNotOpen, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Job is not accepting applications"},
	{apperrors.ErrApplicationLimit, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Daily application limit reached"},
	{apperrors.ErrNoOpenPositions, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Job has no unfilled positions"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	// 404
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrCompanyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Company not found"},
	{apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Job not found"},
	{apperrors.ErrCandidateNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Candidate profile not found"},
	{apperrors.ErrConsultantNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Consultant not found"},
	{apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Application not found"},
	{apperrors.ErrConversationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Conversation not found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Notification not found"},
	{apperrors.ErrConfigurationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Configuration not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	// 409
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrCompanyAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Company with this name already exists"},
	{apperrors.ErrProfileExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Profile already exists"},
	{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already applied to this job"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource was modified concurrently"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	isAppErr := errors.As(err, &appErr)

	for _, rule := range errorRules {
		if !errors.Is(err, rule.target) {
			continue
		}

		message := rule.message
		if isAppErr && appErr.Message != "" {
			message = appErr.Message
		}
		detail := dto.NewErrorDetail(rule.code, message)
		if rule.status < http.StatusInternalServerError {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		if isAppErr && len(appErr.Details) > 0 {
			detail = detail.WithDetails(appErr.Details)
		}

		c.AbortWithStatusJSON(rule.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled API error")

	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}

// StatusForError reports the HTTP status HandleAPIError would use
func StatusForError(err error) int {
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule.status
		}
	}
	return http.StatusInternalServerError
}
