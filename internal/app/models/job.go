package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentType is the contract type of a job
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContract   EmploymentType = "CONTRACT"
	EmploymentInternship EmploymentType = "INTERNSHIP"
	EmploymentTemporary  EmploymentType = "TEMPORARY"
)

// ExperienceLevel is the seniority a job asks for
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "ENTRY"
	ExperienceMid       ExperienceLevel = "MID"
	ExperienceSenior    ExperienceLevel = "SENIOR"
	ExperienceLead      ExperienceLevel = "LEAD"
	ExperienceExecutive ExperienceLevel = "EXECUTIVE"
)

// JobStatus is the publication state of a job
type JobStatus string

const (
	JobStatusDraft  JobStatus = "DRAFT"
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusPaused JobStatus = "PAUSED"
	JobStatusClosed JobStatus = "CLOSED"
	JobStatusFilled JobStatus = "FILLED"
)

// jobTransitions lists the statuses that may be set manually from each state.
// FILLED is only reached through placement accounting.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusDraft:  {JobStatusOpen},
	JobStatusOpen:   {JobStatusPaused, JobStatusClosed},
	JobStatusPaused: {JobStatusOpen, JobStatusClosed},
}

// CanTransitionJob reports whether a job may move from one status to another by hand
func CanTransitionJob(from, to JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Job defines the job model based on the 'jobs' table
type Job struct {
	ID              int64               `json:"id" db:"id" example:"10"`
	CompanyID       int64               `json:"companyId" db:"company_id" example:"1"`
	CompanyName     string              `json:"companyName,omitempty" db:"company_name"`
	Title           string              `json:"title" db:"title" example:"Backend Engineer"`
	Description     string              `json:"description" db:"description"`
	Location        string              `json:"location,omitempty" db:"location"`
	EmploymentType  EmploymentType      `json:"employmentType" db:"employment_type" example:"FULL_TIME"`
	ExperienceLevel ExperienceLevel     `json:"experienceLevel" db:"experience_level" example:"MID"`
	Remote          bool                `json:"remote" db:"remote"`
	SalaryMin       decimal.NullDecimal `json:"salaryMin" db:"salary_min" swaggertype:"string"`
	SalaryMax       decimal.NullDecimal `json:"salaryMax" db:"salary_max" swaggertype:"string"`
	Currency        string              `json:"currency" db:"currency" example:"EUR"`
	Skills          []string            `json:"skills" db:"skills"`
	Status          JobStatus           `json:"status" db:"status" example:"OPEN"`
	Positions       int                 `json:"positions" db:"positions" example:"2"`
	PositionsFilled int                 `json:"positionsFilled" db:"positions_filled" example:"0"`
	ConsultantID    *int64              `json:"consultantId,omitempty" db:"consultant_id"`
	PostedBy        int64               `json:"postedBy" db:"posted_by"`
	PublishedAt     *time.Time          `json:"publishedAt,omitempty" db:"published_at"`
	ClosesAt        *time.Time          `json:"closesAt,omitempty" db:"closes_at"`
	CreatedAt       time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" db:"updated_at"`
	DeletedAt       *time.Time          `json:"-" db:"deleted_at"`
}

// FillsOnLastHire reports whether a job in this status turns FILLED when its
// last position is taken. CLOSED is terminal and keeps its status.
func (s JobStatus) FillsOnLastHire() bool {
	return s == JobStatusOpen || s == JobStatusPaused
}

// HasOpenPosition reports whether another hire fits on the job
func (j *Job) HasOpenPosition() bool {
	return j.PositionsFilled < j.Positions
}

// AcceptsApplications reports whether candidates may apply at the given time
func (j *Job) AcceptsApplications(now time.Time) bool {
	if j.Status != JobStatusOpen {
		return false
	}
	return j.ClosesAt == nil || j.ClosesAt.After(now)
}

// JobFilter holds job search parameters
type JobFilter struct {
	Keyword         string
	Location        string
	EmploymentType  *EmploymentType
	ExperienceLevel *ExperienceLevel
	Status          *JobStatus
	CompanyID       *int64
	ConsultantID    *int64
	Remote          *bool
	MinSalary       *decimal.Decimal
	Skill           string
	Page            int
	Size            int
}
