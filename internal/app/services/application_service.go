package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/cache"
	"github.com/yigit/hireloop/internal/pkg/email"
	"github.com/yigit/hireloop/internal/pkg/events"
	"github.com/yigit/hireloop/internal/pkg/matching"
	"github.com/yigit/hireloop/internal/pkg/metrics"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// ApplicationService defines the interface for the application workflow
type ApplicationService interface {
	Apply(ctx context.Context, actor models.Actor, req *dto.ApplyRequest) (*models.Application, error)
	GetApplication(ctx context.Context, actor models.Actor, id int64) (*models.Application, error)
	ListMyApplications(ctx context.Context, actor models.Actor, status *models.ApplicationStatus, page, size int) ([]*models.Application, int64, error)
	ListJobApplications(ctx context.Context, actor models.Actor, jobID int64, status *models.ApplicationStatus, page, size int) ([]*models.Application, int64, error)
	ChangeStatus(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.Application, error)
	GetHistory(ctx context.Context, actor models.Actor, id int64) ([]*models.StatusHistory, error)
	RateApplication(ctx context.Context, actor models.Actor, id int64, rating int) (*models.Application, error)
}

// ApplicationDeps groups the collaborators of the application service
type ApplicationDeps struct {
	Applications  ApplicationStore
	Jobs          JobStore
	Candidates    CandidateStore
	Consultants   ConsultantStore
	Companies     CompanyStore
	Users         UserStore
	Authz         *auth.AuthorizationService
	Notifications NotificationService
	Mailer        email.EmailService
	Publisher     events.Publisher
	Cache         cache.Cache
	Settings      *Settings
}

type applicationServiceImpl struct {
	ApplicationDeps
	logger zerolog.Logger
	now    func() time.Time
}

// NewApplicationService creates a new application service instance
func NewApplicationService(deps ApplicationDeps, logger zerolog.Logger) ApplicationService {
	return &applicationServiceImpl{
		ApplicationDeps: deps,
		logger:          logger,
		now:             time.Now,
	}
}

// Apply submits the caller's application to an open job
func (s *applicationServiceImpl) Apply(ctx context.Context, actor models.Actor, req *dto.ApplyRequest) (*models.Application, error) {
	if actor.Role != models.RoleCandidate {
		return nil, apperrors.NewForbiddenError("only candidates can apply to jobs")
	}

	profile, err := s.Candidates.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCandidateNotFound) {
			return nil, apperrors.NewBadRequestError("create a candidate profile before applying")
		}
		return nil, err
	}

	job, err := s.Jobs.GetJobByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !job.AcceptsApplications(now) {
		return nil, apperrors.ErrJobNotOpen
	}

	if limit := s.Settings.MaxApplicationsPerDay(ctx); limit > 0 {
		count, err := s.Applications.CountApplicationsSince(ctx, profile.ID, now.Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		if count >= int64(limit) {
			return nil, fmt.Errorf("%w: at most %d applications per day", apperrors.ErrApplicationLimit, limit)
		}
	}

	app := &models.Application{
		JobID:           job.ID,
		CandidateID:     profile.ID,
		ConsultantID:    job.ConsultantID,
		Status:          models.StatusSubmitted,
		CoverLetter:     validation.SanitizeRichText(req.CoverLetter),
		MatchScore:      matching.Score(profile.Skills, job.Skills),
		SubmittedAt:     now,
		UpdatedAt:       now,
		JobTitle:        job.Title,
		CompanyID:       job.CompanyID,
		CandidateUserID: actor.UserID,
		CandidateName:   strings.TrimSpace(profile.FirstName + " " + profile.LastName),
	}

	id, err := s.Applications.CreateApplication(ctx, app, actor.UserID)
	if err != nil {
		return nil, err
	}
	app.ID = id

	s.afterApply(ctx, app, job)
	s.logger.Info().Int64("applicationID", id).Int64("jobID", job.ID).Int("matchScore", app.MatchScore).Msg("Application submitted")
	return app, nil
}

func (s *applicationServiceImpl) afterApply(ctx context.Context, app *models.Application, job *models.Job) {
	metrics.ApplicationsSubmitted.Inc()

	data := map[string]interface{}{"applicationId": app.ID, "jobId": job.ID}
	message := fmt.Sprintf("New application for %q (match score %d)", job.Title, app.MatchScore)

	if company, err := s.Companies.GetCompanyByID(ctx, job.CompanyID); err == nil {
		s.notify(ctx, company.OwnerID, models.NotificationNewApplication, "New application", message, data)
	} else {
		s.logger.Warn().Err(err).Int64("companyID", job.CompanyID).Msg("Failed to load company for new application notification")
	}

	if job.ConsultantID != nil {
		if consultant, err := s.Consultants.GetConsultantByID(ctx, *job.ConsultantID); err == nil {
			s.notify(ctx, consultant.UserID, models.NotificationNewApplication, "New application", message, data)
		} else {
			s.logger.Warn().Err(err).Int64("consultantID", *job.ConsultantID).Msg("Failed to load consultant for new application notification")
		}
	}

	payload := events.ApplicationSubmitted{
		ApplicationID: app.ID,
		JobID:         job.ID,
		CompanyID:     job.CompanyID,
		CandidateID:   app.CandidateID,
		MatchScore:    app.MatchScore,
	}
	s.publish(ctx, events.TypeApplicationSubmitted, app.ID, payload)
	s.invalidateAnalytics(ctx)
}

// GetApplication returns an application visible to the actor
func (s *applicationServiceImpl) GetApplication(ctx context.Context, actor models.Actor, id int64) (*models.Application, error) {
	app, err := s.Applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.Authz.CanViewApplication(ctx, actor, app)); err != nil {
		return nil, err
	}
	return app, nil
}

// ListMyApplications lists a candidate's own applications, or a consultant's assigned ones
func (s *applicationServiceImpl) ListMyApplications(ctx context.Context, actor models.Actor, status *models.ApplicationStatus, page, size int) ([]*models.Application, int64, error) {
	filter := models.ApplicationFilter{Status: status, Page: page, Size: size}

	switch actor.Role {
	case models.RoleCandidate:
		profile, err := s.Candidates.GetProfileByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		filter.CandidateID = &profile.ID
	case models.RoleConsultant:
		consultant, err := s.Consultants.GetConsultantByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		filter.ConsultantID = &consultant.ID
	default:
		return nil, 0, apperrors.NewForbiddenError("only candidates and consultants have personal application lists")
	}

	return s.Applications.ListApplications(ctx, filter)
}

// ListJobApplications lists the applications of a job for its managers
func (s *applicationServiceImpl) ListJobApplications(ctx context.Context, actor models.Actor, jobID int64, status *models.ApplicationStatus, page, size int) ([]*models.Application, int64, error) {
	job, err := s.Jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	if err := auth.Require(s.Authz.CanManageJob(ctx, actor, job, true)); err != nil {
		return nil, 0, err
	}
	return s.Applications.ListApplications(ctx, models.ApplicationFilter{JobID: &job.ID, Status: status, Page: page, Size: size})
}

// checkActor enforces who may perform a transition: the owning candidate withdraws,
// company employers, the assigned consultant and admins do everything else.
func (s *applicationServiceImpl) checkActor(ctx context.Context, actor models.Actor, app *models.Application, to models.ApplicationStatus) error {
	if to == models.StatusWithdrawn {
		if actor.Role != models.RoleCandidate || app.CandidateUserID != actor.UserID {
			return apperrors.NewForbiddenError("only the applying candidate can withdraw an application")
		}
		return nil
	}
	if actor.Role == models.RoleCandidate {
		return apperrors.NewForbiddenError("candidates can only withdraw their applications")
	}
	return auth.Require(s.Authz.CanHandleApplication(ctx, actor, app))
}

// ChangeStatus validates and applies one workflow transition, then fans out the
// notifications, mail, event, metrics and cache invalidation.
func (s *applicationServiceImpl) ChangeStatus(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	app, err := s.Applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.Authz.CanViewApplication(ctx, actor, app)); err != nil {
		return nil, err
	}

	from, to := app.Status, req.Status
	if !to.IsValid() {
		return nil, apperrors.NewValidationError("unknown application status", map[string]interface{}{"status": string(to)})
	}
	if !models.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: cannot move application from %s to %s", apperrors.ErrInvalidStatusTransition, from, to)
	}
	if err := s.checkActor(ctx, actor, app, to); err != nil {
		return nil, err
	}

	now := s.now()
	change := &models.StatusChange{
		ApplicationID: app.ID,
		From:          from,
		To:            to,
		ChangedBy:     actor.UserID,
		Note:          validation.SanitizeText(req.Note),
		At:            now,
		JobID:         app.JobID,
	}

	switch to {
	case models.StatusInterviewScheduled:
		if req.InterviewAt == nil || !req.InterviewAt.After(now) {
			return nil, apperrors.NewValidationError("an interview date in the future is required",
				map[string]interface{}{"interviewAt": "must be in the future"})
		}
		change.InterviewAt = req.InterviewAt
	case models.StatusRejected:
		reason := strings.TrimSpace(validation.SanitizeText(req.RejectionReason))
		if reason == "" {
			return nil, apperrors.NewValidationError("a rejection reason is required",
				map[string]interface{}{"rejectionReason": "rejectionReason is required"})
		}
		change.RejectionReason = reason
	case models.StatusOfferExtended:
		if req.OfferedSalary != nil {
			if req.OfferedSalary.IsNegative() {
				return nil, apperrors.NewValidationError("offered salary must not be negative",
					map[string]interface{}{"offeredSalary": "must be >= 0"})
			}
			change.OfferedSalary = nullDecimal(req.OfferedSalary)
		}
	case models.StatusHired:
		if err := s.preparePlacement(ctx, app, change); err != nil {
			return nil, err
		}
	}

	result, err := s.Applications.ApplyStatusChange(ctx, change)
	if err != nil {
		return nil, err
	}

	applyChangeLocally(app, change)
	s.afterStatusChange(ctx, actor, app, change, result)

	s.logger.Info().Int64("applicationID", app.ID).Str("from", string(from)).Str("to", string(to)).
		Int64("actorID", actor.UserID).Msg("Application status changed")
	return app, nil
}

// preparePlacement checks the job still has room and computes the consultant fee
func (s *applicationServiceImpl) preparePlacement(ctx context.Context, app *models.Application, change *models.StatusChange) error {
	job, err := s.Jobs.GetJobByID(ctx, app.JobID)
	if err != nil {
		return err
	}
	if !job.HasOpenPosition() {
		return apperrors.ErrNoOpenPositions
	}

	if app.ConsultantID == nil {
		return nil
	}
	consultant, err := s.Consultants.GetConsultantByID(ctx, *app.ConsultantID)
	if err != nil {
		return err
	}
	change.ConsultantID = &consultant.ID
	change.PlacementFee = models.PlacementFee(app.OfferedSalary, job, consultant.CommissionRate)
	return nil
}

func applyChangeLocally(app *models.Application, c *models.StatusChange) {
	if c.From == models.StatusSubmitted && app.ReviewedAt == nil {
		at := c.At
		app.ReviewedAt = &at
	}
	app.Status = c.To
	app.UpdatedAt = c.At

	switch c.To {
	case models.StatusInterviewScheduled:
		app.InterviewAt = c.InterviewAt
	case models.StatusRejected:
		app.RejectionReason = c.RejectionReason
	case models.StatusOfferExtended:
		if c.OfferedSalary.Valid {
			app.OfferedSalary = c.OfferedSalary
		}
	case models.StatusHired:
		at := c.At
		app.HiredAt = &at
		app.PlacementFee = c.PlacementFee
	}
}

func (s *applicationServiceImpl) afterStatusChange(ctx context.Context, actor models.Actor, app *models.Application, c *models.StatusChange, result *models.StatusChangeResult) {
	metrics.RecordTransition(string(c.From), string(c.To))
	if c.PlacementFee.Valid {
		metrics.RecordPlacementFee(c.PlacementFee.Decimal)
	}

	human := email.HumanStatus(string(c.To))
	data := map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"from":          string(c.From),
		"to":            string(c.To),
	}
	title := "Application " + strings.ToLower(human)
	message := fmt.Sprintf("Your application for %q is now %s", app.JobTitle, strings.ToLower(human))

	if app.CandidateUserID != actor.UserID {
		s.notify(ctx, app.CandidateUserID, models.NotificationApplicationStatus, title, message, data)
	}
	if app.ConsultantUserID != nil && *app.ConsultantUserID != actor.UserID {
		msg := fmt.Sprintf("%s's application for %q is now %s", app.CandidateName, app.JobTitle, strings.ToLower(human))
		s.notify(ctx, *app.ConsultantUserID, models.NotificationApplicationStatus, title, msg, data)
	}

	s.sendStatusEmail(ctx, app, c)

	payload := events.ApplicationStatusChanged{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		CompanyID:     app.CompanyID,
		CandidateID:   app.CandidateID,
		ConsultantID:  c.ConsultantID,
		From:          string(c.From),
		To:            string(c.To),
		ChangedBy:     actor.UserID,
		JobFilled:     result != nil && result.JobFilled,
	}
	if c.PlacementFee.Valid {
		fee := c.PlacementFee.Decimal.StringFixed(2)
		payload.PlacementFee = &fee
	}
	s.publish(ctx, events.TypeApplicationStatusChanged, app.ID, payload)

	if result != nil && result.JobFilled {
		s.logger.Info().Int64("jobID", app.JobID).Msg("Job filled by placement")
		s.publish(ctx, events.TypeJobStatusChanged, app.JobID, events.JobStatusChanged{
			JobID:     app.JobID,
			CompanyID: app.CompanyID,
			From:      string(models.JobStatusOpen),
			To:        string(models.JobStatusFilled),
			ChangedBy: actor.UserID,
		})
	}

	s.invalidateAnalytics(ctx)
}

func (s *applicationServiceImpl) sendStatusEmail(ctx context.Context, app *models.Application, c *models.StatusChange) {
	user, err := s.Users.GetUserByID(ctx, app.CandidateUserID)
	if err != nil {
		metrics.RecordSideEffectFailure("email")
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to load candidate for status email")
		return
	}

	update := email.StatusUpdate{
		ApplicationID: app.ID,
		JobTitle:      app.JobTitle,
		Status:        string(c.To),
		Note:          c.Note,
	}
	if c.To == models.StatusRejected {
		update.Note = c.RejectionReason
	}
	if company, err := s.Companies.GetCompanyByID(ctx, app.CompanyID); err == nil {
		update.CompanyName = company.Name
	}

	if err := s.Mailer.SendApplicationStatusEmail(user.Email, user.FullName(), update); err != nil {
		metrics.RecordSideEffectFailure("email")
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send status email")
	}
}

// GetHistory returns the ordered status history of an application
func (s *applicationServiceImpl) GetHistory(ctx context.Context, actor models.Actor, id int64) ([]*models.StatusHistory, error) {
	if _, err := s.GetApplication(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.Applications.ListStatusHistory(ctx, id)
}

// RateApplication stores a 1..5 rating
func (s *applicationServiceImpl) RateApplication(ctx context.Context, actor models.Actor, id int64, rating int) (*models.Application, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]interface{}{"rating": "must be between 1 and 5"})
	}

	app, err := s.Applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.Authz.CanHandleApplication(ctx, actor, app)); err != nil {
		return nil, err
	}
	if err := s.Applications.SetRating(ctx, id, rating); err != nil {
		return nil, err
	}
	app.Rating = &rating
	return app, nil
}

func (s *applicationServiceImpl) notify(ctx context.Context, userID int64, kind models.NotificationType, title, message string, data map[string]interface{}) {
	n := &models.Notification{UserID: userID, Type: kind, Title: title, Message: message, Data: data}
	if err := s.Notifications.Notify(ctx, n); err != nil {
		metrics.RecordSideEffectFailure("notification")
		s.logger.Warn().Err(err).Int64("userID", userID).Str("type", string(kind)).Msg("Failed to create notification")
	}
}

func (s *applicationServiceImpl) publish(ctx context.Context, eventType string, key int64, payload interface{}) {
	if err := s.Publisher.Publish(ctx, eventType, strconv.FormatInt(key, 10), payload); err != nil {
		metrics.RecordSideEffectFailure("event")
		s.logger.Warn().Err(err).Str("type", eventType).Msg("Failed to publish event")
	}
}

func (s *applicationServiceImpl) invalidateAnalytics(ctx context.Context) {
	if err := s.Cache.DeletePattern(ctx, cache.AnalyticsPattern()); err != nil {
		metrics.RecordSideEffectFailure("cache")
		s.logger.Warn().Err(err).Msg("Failed to invalidate analytics cache")
	}
}
