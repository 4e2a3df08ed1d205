package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/cache"
	"github.com/yigit/hireloop/internal/pkg/events"
	"github.com/yigit/hireloop/internal/pkg/metrics"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

const defaultCurrency = "USD"

// JobService defines the interface for job-related operations
type JobService interface {
	CreateJob(ctx context.Context, actor models.Actor, req *dto.CreateJobRequest) (*models.Job, error)
	GetJobByID(ctx context.Context, actor *models.Actor, id int64) (*models.Job, error)
	SearchJobs(ctx context.Context, actor *models.Actor, filter models.JobFilter) ([]*models.Job, int64, error)
	ListCompanyJobs(ctx context.Context, actor *models.Actor, companyID int64, filter models.JobFilter) ([]*models.Job, int64, error)
	ListAssignedJobs(ctx context.Context, actor models.Actor, page, size int) ([]*models.Job, int64, error)
	UpdateJob(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error)
	ChangeJobStatus(ctx context.Context, actor models.Actor, id int64, to models.JobStatus) (*models.Job, error)
	AssignConsultant(ctx context.Context, actor models.Actor, jobID, consultantID int64) (*models.Job, error)
	DeleteJob(ctx context.Context, actor models.Actor, id int64) error
}

type jobServiceImpl struct {
	jobs          JobStore
	companies     CompanyStore
	consultants   ConsultantStore
	authz         *auth.AuthorizationService
	notifications NotificationService
	publisher     events.Publisher
	cache         cache.Cache
	logger        zerolog.Logger
	now           func() time.Time
}

// NewJobService creates a new job service instance
func NewJobService(
	jobs JobStore,
	companies CompanyStore,
	consultants ConsultantStore,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	publisher events.Publisher,
	cacheStore cache.Cache,
	logger zerolog.Logger,
) JobService {
	return &jobServiceImpl{
		jobs:          jobs,
		companies:     companies,
		consultants:   consultants,
		authz:         authz,
		notifications: notifications,
		publisher:     publisher,
		cache:         cacheStore,
		logger:        logger,
		now:           time.Now,
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// validateCurrency requires an upper-case ISO 4217 style code
func validateCurrency(code string) error {
	if !validation.CompiledPatterns.Currency.MatchString(code) {
		return apperrors.NewValidationError("currency must be a three letter ISO code",
			map[string]interface{}{"currency": "expected e.g. USD"})
	}
	return nil
}

// validateSalaryRange checks that the bounds are non-negative and ordered
func validateSalaryRange(min, max decimal.NullDecimal) error {
	if min.Valid && min.Decimal.IsNegative() {
		return apperrors.NewValidationError("salary must not be negative", map[string]interface{}{"salaryMin": "must be >= 0"})
	}
	if max.Valid && max.Decimal.IsNegative() {
		return apperrors.NewValidationError("salary must not be negative", map[string]interface{}{"salaryMax": "must be >= 0"})
	}
	if min.Valid && max.Valid && min.Decimal.GreaterThan(max.Decimal) {
		return apperrors.NewValidationError("salaryMin must not exceed salaryMax",
			map[string]interface{}{"salaryMin": "must be less than or equal to salaryMax"})
	}
	return nil
}

// CreateJob creates a job for a company, as a draft unless publish is requested
func (s *jobServiceImpl) CreateJob(ctx context.Context, actor models.Actor, req *dto.CreateJobRequest) (*models.Job, error) {
	if _, err := s.companies.GetCompanyByID(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	probe := &models.Job{CompanyID: req.CompanyID}
	if err := auth.Require(s.authz.CanManageJob(ctx, actor, probe, false)); err != nil {
		return nil, err
	}

	now := s.now()
	job := &models.Job{
		CompanyID:       req.CompanyID,
		Title:           strings.TrimSpace(validation.SanitizeText(req.Title)),
		Description:     validation.SanitizeRichText(req.Description),
		Location:        strings.TrimSpace(req.Location),
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		Remote:          req.Remote,
		SalaryMin:       nullDecimal(req.SalaryMin),
		SalaryMax:       nullDecimal(req.SalaryMax),
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
		Skills:          validation.SanitizeList(req.Skills),
		Status:          models.JobStatusDraft,
		Positions:       req.Positions,
		PostedBy:        actor.UserID,
		ClosesAt:        req.ClosesAt,
	}
	if job.Currency == "" {
		job.Currency = defaultCurrency
	}
	if job.Positions <= 0 {
		job.Positions = 1
	}
	if job.Title == "" {
		return nil, apperrors.NewValidationError("title cannot be empty", map[string]interface{}{"title": "title is required"})
	}
	if err := validateSalaryRange(job.SalaryMin, job.SalaryMax); err != nil {
		return nil, err
	}
	if err := validateCurrency(job.Currency); err != nil {
		return nil, err
	}
	if job.ClosesAt != nil && !job.ClosesAt.After(now) {
		return nil, apperrors.NewValidationError("closesAt must be in the future", map[string]interface{}{"closesAt": "must be in the future"})
	}
	if req.Publish {
		job.Status = models.JobStatusOpen
		job.PublishedAt = &now
	}

	id, err := s.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}
	job.ID = id

	s.invalidateAnalytics(ctx)
	s.logger.Info().Int64("jobID", id).Int64("companyID", job.CompanyID).Str("status", string(job.Status)).Msg("Job created")
	return job, nil
}

// GetJobByID returns OPEN jobs to everyone. Jobs in any other status are only
// visible to the people who manage them; everyone else gets not found.
func (s *jobServiceImpl) GetJobByID(ctx context.Context, actor *models.Actor, id int64) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusOpen {
		return job, nil
	}
	if actor != nil {
		manager, err := s.authz.CanManageJob(ctx, *actor, job, true)
		if err != nil {
			return nil, err
		}
		if manager {
			return job, nil
		}
	}
	return nil, apperrors.ErrJobNotFound
}

// SearchJobs lists jobs; without an explicit status only OPEN jobs are returned.
// Other statuses need an admin, or a company member filtering on their company.
func (s *jobServiceImpl) SearchJobs(ctx context.Context, actor *models.Actor, filter models.JobFilter) ([]*models.Job, int64, error) {
	if filter.Status == nil {
		open := models.JobStatusOpen
		filter.Status = &open
	}
	if *filter.Status != models.JobStatusOpen {
		allowed, err := s.canSeeUnpublished(ctx, actor, filter.CompanyID)
		if err != nil {
			return nil, 0, err
		}
		if !allowed {
			return nil, 0, apperrors.NewForbiddenError("only company members can list jobs that are not open")
		}
	}
	return s.jobs.SearchJobs(ctx, filter)
}

func (s *jobServiceImpl) canSeeUnpublished(ctx context.Context, actor *models.Actor, companyID *int64) (bool, error) {
	switch {
	case actor == nil:
		return false, nil
	case actor.IsAdmin():
		return true, nil
	case companyID == nil:
		return false, nil
	}
	return s.authz.IsCompanyMember(ctx, *actor, *companyID)
}

// ListCompanyJobs lists the jobs of a company. Members see every status, everyone
// else only OPEN jobs.
func (s *jobServiceImpl) ListCompanyJobs(ctx context.Context, actor *models.Actor, companyID int64, filter models.JobFilter) ([]*models.Job, int64, error) {
	company, err := s.companies.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	filter.CompanyID = &company.ID

	member := false
	if actor != nil {
		if member, err = s.authz.CanManageCompany(ctx, *actor, company); err != nil {
			return nil, 0, err
		}
	}
	if !member {
		open := models.JobStatusOpen
		filter.Status = &open
	}
	return s.jobs.SearchJobs(ctx, filter)
}

// ListAssignedJobs lists the jobs a consultant is assigned to
func (s *jobServiceImpl) ListAssignedJobs(ctx context.Context, actor models.Actor, page, size int) ([]*models.Job, int64, error) {
	consultant, err := s.consultants.GetConsultantByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	return s.jobs.SearchJobs(ctx, models.JobFilter{ConsultantID: &consultant.ID, Page: page, Size: size})
}

// UpdateJob applies a partial update to a job that is not closed or filled
func (s *jobServiceImpl) UpdateJob(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.authz.CanManageJob(ctx, actor, job, true)); err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusClosed || job.Status == models.JobStatusFilled {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("a %s job cannot be edited", strings.ToLower(string(job.Status))))
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(validation.SanitizeText(*req.Title))
	}
	if req.Description != nil {
		job.Description = validation.SanitizeRichText(*req.Description)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.EmploymentType != nil {
		job.EmploymentType = *req.EmploymentType
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Remote != nil {
		job.Remote = *req.Remote
	}
	if req.SalaryMin != nil {
		job.SalaryMin = nullDecimal(req.SalaryMin)
	}
	if req.SalaryMax != nil {
		job.SalaryMax = nullDecimal(req.SalaryMax)
	}
	if req.Currency != nil {
		job.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Skills != nil {
		job.Skills = validation.SanitizeList(req.Skills)
	}
	if req.Positions != nil {
		if *req.Positions < job.PositionsFilled {
			return nil, apperrors.NewValidationError("positions cannot be lower than positions already filled",
				map[string]interface{}{"positions": "must be at least " + strconv.Itoa(job.PositionsFilled)})
		}
		job.Positions = *req.Positions
	}
	if req.ClosesAt != nil {
		if !req.ClosesAt.After(s.now()) {
			return nil, apperrors.NewValidationError("closesAt must be in the future", map[string]interface{}{"closesAt": "must be in the future"})
		}
		job.ClosesAt = req.ClosesAt
	}

	if job.Title == "" {
		return nil, apperrors.NewValidationError("title cannot be empty", map[string]interface{}{"title": "title is required"})
	}
	if err := validateSalaryRange(job.SalaryMin, job.SalaryMax); err != nil {
		return nil, err
	}
	if err := validateCurrency(job.Currency); err != nil {
		return nil, err
	}

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ChangeJobStatus moves a job through its manual lifecycle
func (s *jobServiceImpl) ChangeJobStatus(ctx context.Context, actor models.Actor, id int64, to models.JobStatus) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.authz.CanManageJob(ctx, actor, job, true)); err != nil {
		return nil, err
	}

	from := job.Status
	if !models.CanTransitionJob(from, to) {
		return nil, fmt.Errorf("%w: cannot move job from %s to %s", apperrors.ErrInvalidJobTransition, from, to)
	}

	var publishedAt *time.Time
	if to == models.JobStatusOpen && job.PublishedAt == nil {
		now := s.now()
		publishedAt = &now
	}
	if err := s.jobs.UpdateJobStatus(ctx, id, from, to, publishedAt); err != nil {
		return nil, err
	}
	job.Status = to
	if publishedAt != nil {
		job.PublishedAt = publishedAt
	}

	payload := events.JobStatusChanged{JobID: id, CompanyID: job.CompanyID, From: string(from), To: string(to), ChangedBy: actor.UserID}
	if err := s.publisher.Publish(ctx, events.TypeJobStatusChanged, strconv.FormatInt(id, 10), payload); err != nil {
		metrics.RecordSideEffectFailure("event")
		s.logger.Warn().Err(err).Int64("jobID", id).Msg("Failed to publish job status event")
	}
	s.invalidateAnalytics(ctx)

	s.logger.Info().Int64("jobID", id).Str("from", string(from)).Str("to", string(to)).Msg("Job status changed")
	return job, nil
}

// AssignConsultant assigns an active consultant to a job and notifies them
func (s *jobServiceImpl) AssignConsultant(ctx context.Context, actor models.Actor, jobID, consultantID int64) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.authz.CanManageJob(ctx, actor, job, false)); err != nil {
		return nil, err
	}

	consultant, err := s.consultants.GetConsultantByID(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if !consultant.IsActive {
		return nil, apperrors.NewBadRequestError("consultant is not active")
	}

	if err := s.jobs.AssignConsultant(ctx, jobID, &consultant.ID); err != nil {
		return nil, err
	}
	job.ConsultantID = &consultant.ID

	n := &models.Notification{
		UserID:  consultant.UserID,
		Type:    models.NotificationJobAssigned,
		Title:   "New job assignment",
		Message: fmt.Sprintf("You have been assigned to %q", job.Title),
		Data:    map[string]interface{}{"jobId": job.ID, "companyId": job.CompanyID},
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		metrics.RecordSideEffectFailure("notification")
		s.logger.Warn().Err(err).Int64("jobID", jobID).Msg("Failed to notify assigned consultant")
	}
	return job, nil
}

// DeleteJob soft-deletes a job
func (s *jobServiceImpl) DeleteJob(ctx context.Context, actor models.Actor, id int64) error {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Require(s.authz.CanManageJob(ctx, actor, job, false)); err != nil {
		return err
	}
	if err := s.jobs.SoftDeleteJob(ctx, id); err != nil {
		return err
	}
	s.invalidateAnalytics(ctx)
	return nil
}

func (s *jobServiceImpl) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cache.AnalyticsPattern()); err != nil {
		metrics.RecordSideEffectFailure("cache")
		s.logger.Warn().Err(err).Msg("Failed to invalidate analytics cache")
	}
}
