package dto

import (
	"time"

	"github.com/yigit/hireloop/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@acme.io"`
	Password string `json:"password" binding:"required" example:"Secret123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"2592000"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email     string      `json:"email" binding:"required,email" example:"jane@acme.io"`
	Password  string      `json:"password" binding:"required,min=8" example:"Secret123"`
	FirstName string      `json:"firstName" binding:"required,max=100" example:"Jane"`
	LastName  string      `json:"lastName" binding:"required,max=100" example:"Doe"`
	Role      models.Role `json:"role" binding:"required,oneof=CANDIDATE EMPLOYER CONSULTANT" example:"CANDIDATE"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64       `json:"id" example:"1"`
	Email       string      `json:"email" example:"jane@acme.io"`
	FirstName   string      `json:"firstName" example:"Jane"`
	LastName    string      `json:"lastName" example:"Doe"`
	Role        models.Role `json:"role" example:"CANDIDATE"`
	IsActive    bool        `json:"isActive" example:"true"`
	CompanyID   *int64      `json:"companyId,omitempty"`
	ProfileID   *int64      `json:"profileId,omitempty"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

// NewUserResponse builds a UserResponse from a user model
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CompanyID:   u.CompanyID,
		LastLoginAt: u.LastLoginAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}
