package dto

import "github.com/yigit/hireloop/internal/app/models"

// CreateCompanyRequest represents company creation data
type CreateCompanyRequest struct {
	Name        string                 `json:"name" binding:"required,min=2,max=200" example:"Acme Corp"`
	Industry    string                 `json:"industry" binding:"required,max=100" example:"Software"`
	Size        models.CompanySize     `json:"size" binding:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+" example:"51-200"`
	Website     string                 `json:"website" binding:"omitempty,url,max=255"`
	Description string                 `json:"description" binding:"max=10000"`
	Location    string                 `json:"location" binding:"max=200" example:"Berlin"`
	LogoURL     string                 `json:"logoUrl" binding:"omitempty,url,max=500"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// UpdateCompanyRequest represents a partial company update
type UpdateCompanyRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=2,max=200"`
	Industry    *string                `json:"industry" binding:"omitempty,max=100"`
	Size        *models.CompanySize    `json:"size" binding:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	Website     *string                `json:"website" binding:"omitempty,url,max=255"`
	Description *string                `json:"description" binding:"omitempty,max=10000"`
	Location    *string                `json:"location" binding:"omitempty,max=200"`
	LogoURL     *string                `json:"logoUrl" binding:"omitempty,url,max=500"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// CompanySearchRequest represents company search query parameters
type CompanySearchRequest struct {
	Name     string `form:"name"`
	Industry string `form:"industry"`
	Location string `form:"location"`
	Verified *bool  `form:"verified"`
}

// VerifyCompanyRequest toggles the verified flag
type VerifyCompanyRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}
