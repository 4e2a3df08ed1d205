package dto

import (
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
)

// CandidateProfileRequest creates or updates the caller's candidate profile
type CandidateProfileRequest struct {
	Headline        string                 `json:"headline" binding:"required,max=200" example:"Go developer"`
	Summary         string                 `json:"summary" binding:"max=10000"`
	Location        string                 `json:"location" binding:"max=200"`
	YearsExperience int                    `json:"yearsExperience" binding:"min=0,max=70"`
	Skills          []string               `json:"skills" binding:"max=100,dive,min=1,max=60"`
	Certifications  []models.Certification `json:"certifications" binding:"max=50"`
	DesiredSalary   *decimal.Decimal       `json:"desiredSalary" swaggertype:"string"`
	OpenToWork      *bool                  `json:"openToWork"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// CandidateSearchRequest represents candidate search query parameters
type CandidateSearchRequest struct {
	Skill         string `form:"skill"`
	Location      string `form:"location"`
	MinExperience *int   `form:"minExperience" binding:"omitempty,min=0"`
	OpenToWork    *bool  `form:"openToWork"`
	Keyword       string `form:"keyword"`
}
