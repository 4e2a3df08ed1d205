package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
)

// CreateJobRequest represents job creation data
type CreateJobRequest struct {
	CompanyID       int64                  `json:"companyId" binding:"required,min=1" example:"1"`
	Title           string                 `json:"title" binding:"required,min=3,max=200" example:"Backend Engineer"`
	Description     string                 `json:"description" binding:"required,max=20000"`
	Location        string                 `json:"location" binding:"max=200" example:"Remote"`
	EmploymentType  models.EmploymentType  `json:"employmentType" binding:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP TEMPORARY" example:"FULL_TIME"`
	ExperienceLevel models.ExperienceLevel `json:"experienceLevel" binding:"required,oneof=ENTRY MID SENIOR LEAD EXECUTIVE" example:"MID"`
	Remote          bool                   `json:"remote"`
	SalaryMin       *decimal.Decimal       `json:"salaryMin" swaggertype:"string" example:"50000"`
	SalaryMax       *decimal.Decimal       `json:"salaryMax" swaggertype:"string" example:"70000"`
	Currency        string                 `json:"currency" binding:"omitempty,len=3" example:"EUR"`
	Skills          []string               `json:"skills" binding:"max=50,dive,min=1,max=60"`
	Positions       int                    `json:"positions" binding:"omitempty,min=1,max=1000" example:"1"`
	ClosesAt        *time.Time             `json:"closesAt"`
	Publish         bool                   `json:"publish"`
}

// UpdateJobRequest represents a partial job update
type UpdateJobRequest struct {
	Title           *string                 `json:"title" binding:"omitempty,min=3,max=200"`
	Description     *string                 `json:"description" binding:"omitempty,max=20000"`
	Location        *string                 `json:"location" binding:"omitempty,max=200"`
	EmploymentType  *models.EmploymentType  `json:"employmentType" binding:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP TEMPORARY"`
	ExperienceLevel *models.ExperienceLevel `json:"experienceLevel" binding:"omitempty,oneof=ENTRY MID SENIOR LEAD EXECUTIVE"`
	Remote          *bool                   `json:"remote"`
	SalaryMin       *decimal.Decimal        `json:"salaryMin" swaggertype:"string"`
	SalaryMax       *decimal.Decimal        `json:"salaryMax" swaggertype:"string"`
	Currency        *string                 `json:"currency" binding:"omitempty,len=3"`
	Skills          []string                `json:"skills" binding:"omitempty,max=50,dive,min=1,max=60"`
	Positions       *int                    `json:"positions" binding:"omitempty,min=1,max=1000"`
	ClosesAt        *time.Time              `json:"closesAt"`
}

// UpdateJobStatusRequest moves a job through its lifecycle
type UpdateJobStatusRequest struct {
	Status models.JobStatus `json:"status" binding:"required,oneof=DRAFT OPEN PAUSED CLOSED FILLED" example:"OPEN"`
}

// AssignConsultantRequest assigns a consultant to a job
type AssignConsultantRequest struct {
	ConsultantID int64 `json:"consultantId" binding:"required,min=1" example:"3"`
}

// JobSearchRequest represents job search query parameters
type JobSearchRequest struct {
	Keyword         string `form:"keyword"`
	Location        string `form:"location"`
	EmploymentType  string `form:"employmentType" binding:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP TEMPORARY"`
	ExperienceLevel string `form:"experienceLevel" binding:"omitempty,oneof=ENTRY MID SENIOR LEAD EXECUTIVE"`
	Status          string `form:"status" binding:"omitempty,oneof=DRAFT OPEN PAUSED CLOSED FILLED"`
	CompanyID       *int64 `form:"companyId"`
	Remote          *bool  `form:"remote"`
	MinSalary       string `form:"minSalary"`
	Skill           string `form:"skill"`
}
