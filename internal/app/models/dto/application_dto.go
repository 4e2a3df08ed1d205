package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
)

// ApplyRequest submits an application to a job
type ApplyRequest struct {
	JobID       int64  `json:"jobId" binding:"required,min=1" example:"10"`
	CoverLetter string `json:"coverLetter" binding:"max=10000"`
}

// UpdateApplicationStatusRequest moves an application through the workflow
type UpdateApplicationStatusRequest struct {
	Status          models.ApplicationStatus `json:"status" binding:"required" example:"UNDER_REVIEW"`
	Note            string                   `json:"note" binding:"max=2000"`
	RejectionReason string                   `json:"rejectionReason" binding:"max=2000"`
	InterviewAt     *time.Time               `json:"interviewAt"`
	OfferedSalary   *decimal.Decimal         `json:"offeredSalary" swaggertype:"string"`
}

// RateApplicationRequest rates an application
type RateApplicationRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5" example:"4"`
}

// ApplicationListRequest filters application lists
type ApplicationListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=SUBMITTED UNDER_REVIEW SHORTLISTED INTERVIEW_SCHEDULED INTERVIEWED OFFER_EXTENDED HIRED REJECTED WITHDRAWN"`
}

// ApplicationDetailResponse is an application together with its allowed next statuses
type ApplicationDetailResponse struct {
	*models.Application
	NextStatuses []models.ApplicationStatus `json:"nextStatuses"`
}
