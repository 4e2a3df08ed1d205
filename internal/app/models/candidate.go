package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Certification is a single entry of a candidate's certifications JSON column
type Certification struct {
	Name   string `json:"name" example:"AWS Solutions Architect"`
	Issuer string `json:"issuer,omitempty" example:"Amazon"`
	Year   int    `json:"year,omitempty" example:"2023"`
}

// CandidateProfile defines the candidate model based on the 'candidate_profiles' table
type CandidateProfile struct {
	ID              int64                  `json:"id" db:"id"`
	UserID          int64                  `json:"userId" db:"user_id"`
	FirstName       string                 `json:"firstName,omitempty" db:"first_name"`
	LastName        string                 `json:"lastName,omitempty" db:"last_name"`
	Email           string                 `json:"email,omitempty" db:"email"`
	Headline        string                 `json:"headline" db:"headline" example:"Go developer"`
	Summary         string                 `json:"summary,omitempty" db:"summary"`
	Location        string                 `json:"location,omitempty" db:"location"`
	YearsExperience int                    `json:"yearsExperience" db:"years_experience"`
	Skills          []string               `json:"skills" db:"skills"`
	Certifications  []Certification        `json:"certifications" db:"certifications"`
	DesiredSalary   decimal.NullDecimal    `json:"desiredSalary" db:"desired_salary" swaggertype:"string"`
	ResumeURL       string                 `json:"resumeUrl,omitempty" db:"resume_url"`
	OpenToWork      bool                   `json:"openToWork" db:"open_to_work"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt       time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time              `json:"updatedAt" db:"updated_at"`
	DeletedAt       *time.Time             `json:"-" db:"deleted_at"`
}

// CandidateFilter holds candidate search parameters
type CandidateFilter struct {
	Skill         string
	Location      string
	MinExperience *int
	OpenToWork    *bool
	Keyword       string
	Page          int
	Size          int
}
