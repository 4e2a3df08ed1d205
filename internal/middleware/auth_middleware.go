package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// TokenValidator resolves an access token to its claims
type TokenValidator interface {
	ValidateAndExtractClaims(token string) (*auth.Claims, error)
}

// UserLookup loads the account behind a token
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens TokenValidator
	users  UserLookup
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// WithAccountCheck makes write requests reload the account so a deactivated
// user is refused before the access token expires. Reads trust the token.
func (m *AuthMiddleware) WithAccountCheck(users UserLookup) *AuthMiddleware {
	m.users = users
	return m
}

// rawToken finds the credential in the Authorization header or, for Swagger UI
// and websocket clients, in the query string.
func rawToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return header
	}
	for _, key := range []string{"authorization", "Authorization", "token"} {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	detail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

func (m *AuthMiddleware) authenticate(c *gin.Context, header string) bool {
	tokenString, err := auth.ExtractBearerToken(header)
	if err != nil {
		abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
		return false
	}

	claims, err := m.tokens.ValidateAndExtractClaims(tokenString)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
		} else {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
		}
		return false
	}

	if m.users != nil && !isReadOnly(c.Request.Method) && !m.accountActive(c, claims.UserID) {
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
	return true
}

func (m *AuthMiddleware) accountActive(c *gin.Context, userID int64) bool {
	user, err := m.users.GetUserByID(c.Request.Context(), userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Account no longer exists")
		return false
	case err != nil:
		HandleAPIError(c, err)
		return false
	case !user.IsActive:
		abortUnauthorized(c, dto.ErrorCodeAccountDisabled, "Account is disabled")
		return false
	}
	return true
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := rawToken(c)
		if header == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}
		if !m.authenticate(c, header) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := rawToken(c)
		if header != "" && !m.authenticate(c, header) {
			return
		}
		c.Next()
	}
}

// RoleRequired middleware to check if user has one of the allowed roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
	}
}

// ActorFromContext returns the authenticated caller set by JWTAuth or OptionalAuth
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return models.Actor{}, false
	}
	userID, ok := id.(int64)
	if !ok {
		return models.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.Role)
	return models.Actor{UserID: userID, Role: r}, true
}

// OptionalActor returns nil for anonymous requests
func OptionalActor(c *gin.Context) *models.Actor {
	actor, ok := ActorFromContext(c)
	if !ok {
		return nil
	}
	return &actor
}
