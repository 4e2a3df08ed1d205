package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the state of an application in the hiring pipeline
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "SUBMITTED"
	StatusUnderReview        ApplicationStatus = "UNDER_REVIEW"
	StatusShortlisted        ApplicationStatus = "SHORTLISTED"
	StatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	StatusInterviewed        ApplicationStatus = "INTERVIEWED"
	StatusOfferExtended      ApplicationStatus = "OFFER_EXTENDED"
	StatusHired              ApplicationStatus = "HIRED"
	StatusRejected           ApplicationStatus = "REJECTED"
	StatusWithdrawn          ApplicationStatus = "WITHDRAWN"
)

// AllApplicationStatuses in pipeline order
var AllApplicationStatuses = []ApplicationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusInterviewed,
	StatusOfferExtended,
	StatusHired,
	StatusRejected,
	StatusWithdrawn,
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:          {StatusUnderReview, StatusRejected, StatusWithdrawn},
	StatusUnderReview:        {StatusShortlisted, StatusRejected, StatusWithdrawn},
	StatusShortlisted:        {StatusInterviewScheduled, StatusRejected, StatusWithdrawn},
	StatusInterviewScheduled: {StatusInterviewed, StatusInterviewScheduled, StatusRejected, StatusWithdrawn},
	StatusInterviewed:        {StatusOfferExtended, StatusRejected, StatusWithdrawn},
	StatusOfferExtended:      {StatusHired, StatusRejected, StatusWithdrawn},
}

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	for _, known := range AllApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// CanTransition reports whether the workflow allows moving from one status to another
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func NextStatuses(s ApplicationStatus) []ApplicationStatus {
	next := applicationTransitions[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// Application defines the application model based on the 'applications' table.
// The fields after UpdatedAt are joined from jobs, candidate_profiles and consultants.
type Application struct {
	ID              int64               `json:"id" db:"id"`
	JobID           int64               `json:"jobId" db:"job_id"`
	CandidateID     int64               `json:"candidateId" db:"candidate_id"`
	ConsultantID    *int64              `json:"consultantId,omitempty" db:"consultant_id"`
	Status          ApplicationStatus   `json:"status" db:"status" example:"SUBMITTED"`
	CoverLetter     string              `json:"coverLetter,omitempty" db:"cover_letter"`
	MatchScore      int                 `json:"matchScore" db:"match_score" example:"72"`
	Rating          *int                `json:"rating,omitempty" db:"rating"`
	RejectionReason string              `json:"rejectionReason,omitempty" db:"rejection_reason"`
	InterviewAt     *time.Time          `json:"interviewAt,omitempty" db:"interview_at"`
	OfferedSalary   decimal.NullDecimal `json:"offeredSalary" db:"offered_salary" swaggertype:"string"`
	PlacementFee    decimal.NullDecimal `json:"placementFee" db:"placement_fee" swaggertype:"string"`
	SubmittedAt     time.Time           `json:"submittedAt" db:"submitted_at"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty" db:"reviewed_at"`
	HiredAt         *time.Time          `json:"hiredAt,omitempty" db:"hired_at"`
	UpdatedAt       time.Time           `json:"updatedAt" db:"updated_at"`

	JobTitle         string `json:"jobTitle,omitempty" db:"job_title"`
	CompanyID        int64  `json:"companyId,omitempty" db:"company_id"`
	CandidateUserID  int64  `json:"candidateUserId,omitempty" db:"candidate_user_id"`
	CandidateName    string `json:"candidateName,omitempty" db:"candidate_name"`
	ConsultantUserID *int64 `json:"consultantUserId,omitempty" db:"consultant_user_id"`
}

// StatusHistory is one row of 'application_status_history'
type StatusHistory struct {
	ID            int64              `json:"id" db:"id"`
	ApplicationID int64              `json:"applicationId" db:"application_id"`
	FromStatus    *ApplicationStatus `json:"fromStatus,omitempty" db:"from_status"`
	ToStatus      ApplicationStatus  `json:"toStatus" db:"to_status"`
	ChangedBy     int64              `json:"changedBy" db:"changed_by"`
	Note          string             `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
}

// StatusChange carries everything that must be written atomically for one transition
type StatusChange struct {
	ApplicationID   int64
	From            ApplicationStatus
	To              ApplicationStatus
	ChangedBy       int64
	Note            string
	At              time.Time
	RejectionReason string
	InterviewAt     *time.Time
	OfferedSalary   decimal.NullDecimal

	// Placement accounting, only used when To is HIRED
	JobID        int64
	ConsultantID *int64
	PlacementFee decimal.NullDecimal
}

// StatusChangeResult reports what the placement accounting did
type StatusChangeResult struct {
	JobFilled bool
}

// ApplicationFilter holds application list parameters
type ApplicationFilter struct {
	JobID        *int64
	CandidateID  *int64
	ConsultantID *int64
	Status       *ApplicationStatus
	Page         int
	Size         int
}

// PlacementFee computes the consultant fee for a hire: the offered salary, or the
// job's maximum salary, or its minimum salary, multiplied by the commission rate and
// rounded to cents. It returns an invalid NullDecimal when no salary base exists.
func PlacementFee(offered decimal.NullDecimal, job *Job, rate decimal.Decimal) decimal.NullDecimal {
	var base decimal.NullDecimal
	switch {
	case offered.Valid:
		base = offered
	case job != nil && job.SalaryMax.Valid:
		base = job.SalaryMax
	case job != nil && job.SalaryMin.Valid:
		base = job.SalaryMin
	default:
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: base.Decimal.Mul(rate).Round(2), Valid: true}
}
