package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// UserReader loads users for membership checks
type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// CompanyReader loads companies for ownership checks
type CompanyReader interface {
	GetCompanyByID(ctx context.Context, id int64) (*models.Company, error)
}

// ConsultantReader resolves the consultant profile of a user
type ConsultantReader interface {
	GetConsultantByUserID(ctx context.Context, userID int64) (*models.Consultant, error)
}

// AuthorizationService handles ownership and membership checks
type AuthorizationService struct {
	users       UserReader
	companies   CompanyReader
	consultants ConsultantReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users UserReader, companies CompanyReader, consultants ConsultantReader) *AuthorizationService {
	return &AuthorizationService{
		users:       users,
		companies:   companies,
		consultants: consultants,
	}
}

// IsCompanyMember reports whether the actor is an employer of the company: its owner or
// a user linked to it.
func (s *AuthorizationService) IsCompanyMember(ctx context.Context, actor models.Actor, companyID int64) (bool, error) {
	if actor.Role != models.RoleEmployer {
		return false, nil
	}

	user, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", actor.UserID).Msg("Error getting user in IsCompanyMember")
		return false, err
	}
	if user.CompanyID != nil && *user.CompanyID == companyID {
		return true, nil
	}

	company, err := s.companies.GetCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCompanyNotFound) {
			return false, nil
		}
		return false, err
	}
	return company.OwnerID == actor.UserID, nil
}

// CanManageCompany allows admins and company employers
func (s *AuthorizationService) CanManageCompany(ctx context.Context, actor models.Actor, company *models.Company) (bool, error) {
	if actor.IsAdmin() || company.OwnerID == actor.UserID {
		return true, nil
	}
	return s.IsCompanyMember(ctx, actor, company.ID)
}

// CanDeleteCompany allows the owner and admins
func (s *AuthorizationService) CanDeleteCompany(actor models.Actor, company *models.Company) bool {
	return actor.IsAdmin() || company.OwnerID == actor.UserID
}

// IsAssignedConsultant reports whether the actor is the consultant with the given profile id
func (s *AuthorizationService) IsAssignedConsultant(ctx context.Context, actor models.Actor, consultantID *int64) (bool, error) {
	if actor.Role != models.RoleConsultant || consultantID == nil {
		return false, nil
	}

	consultant, err := s.consultants.GetConsultantByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConsultantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error getting consultant: %w", err)
	}
	return consultant.ID == *consultantID, nil
}

// CanManageJob allows admins, employers of the job's company and, when allowConsultant
// is set, the consultant assigned to the job.
func (s *AuthorizationService) CanManageJob(ctx context.Context, actor models.Actor, job *models.Job, allowConsultant bool) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}

	member, err := s.IsCompanyMember(ctx, actor, job.CompanyID)
	if err != nil || member {
		return member, err
	}

	if !allowConsultant {
		return false, nil
	}
	return s.IsAssignedConsultant(ctx, actor, job.ConsultantID)
}

// CanHandleApplication allows admins, employers of the job's company and the assigned consultant
func (s *AuthorizationService) CanHandleApplication(ctx context.Context, actor models.Actor, app *models.Application) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.Role == models.RoleConsultant {
		return app.ConsultantUserID != nil && *app.ConsultantUserID == actor.UserID, nil
	}
	return s.IsCompanyMember(ctx, actor, app.CompanyID)
}

// CanViewApplication extends CanHandleApplication with the owning candidate
func (s *AuthorizationService) CanViewApplication(ctx context.Context, actor models.Actor, app *models.Application) (bool, error) {
	if actor.Role == models.RoleCandidate {
		return app.CandidateUserID == actor.UserID, nil
	}
	return s.CanHandleApplication(ctx, actor, app)
}

// Require turns a (bool, error) check into a forbidden error
func Require(allowed bool, err error) error {
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("you don't have permission for this action")
	}
	return nil
}
