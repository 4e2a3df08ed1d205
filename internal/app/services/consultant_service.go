package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// ConsultantService defines the interface for consultant operations
type ConsultantService interface {
	CreateProfile(ctx context.Context, actor models.Actor, req *dto.CreateConsultantRequest) (*models.Consultant, error)
	GetConsultant(ctx context.Context, id int64) (*models.Consultant, error)
	GetMyProfile(ctx context.Context, actor models.Actor) (*models.Consultant, error)
	UpdateConsultant(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateConsultantRequest) (*models.Consultant, error)
	ListConsultants(ctx context.Context, filter models.ConsultantFilter) ([]*models.Consultant, int64, error)
	ListPlacements(ctx context.Context, actor models.Actor, consultantID int64, page, size int) ([]*models.Application, int64, error)
}

type consultantServiceImpl struct {
	consultants  ConsultantStore
	applications ApplicationStore
	settings     *Settings
	logger       zerolog.Logger
}

// NewConsultantService creates a new consultant service instance
func NewConsultantService(consultants ConsultantStore, applications ApplicationStore, settings *Settings, logger zerolog.Logger) ConsultantService {
	return &consultantServiceImpl{
		consultants:  consultants,
		applications: applications,
		settings:     settings,
		logger:       logger,
	}
}

func validCommissionRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// CreateProfile creates the caller's consultant profile with the platform default rate
func (s *consultantServiceImpl) CreateProfile(ctx context.Context, actor models.Actor, req *dto.CreateConsultantRequest) (*models.Consultant, error) {
	if actor.Role != models.RoleConsultant {
		return nil, apperrors.NewForbiddenError("only consultants can create a consultant profile")
	}

	rate := s.settings.DefaultCommissionRate(ctx)
	if !validCommissionRate(rate) {
		s.logger.Warn().Str("rate", rate.String()).Msg("Configured default commission rate out of range, using built-in default")
		rate = models.DefaultCommissionRate
	}

	k := &models.Consultant{
		UserID:          actor.UserID,
		Bio:             validation.SanitizeRichText(req.Bio),
		Specializations: validation.SanitizeList(req.Specializations),
		CommissionRate:  rate,
		IsActive:        true,
	}
	id, err := s.consultants.CreateConsultant(ctx, k)
	if err != nil {
		return nil, err
	}
	k.ID = id
	return k, nil
}

func (s *consultantServiceImpl) GetConsultant(ctx context.Context, id int64) (*models.Consultant, error) {
	return s.consultants.GetConsultantByID(ctx, id)
}

func (s *consultantServiceImpl) GetMyProfile(ctx context.Context, actor models.Actor) (*models.Consultant, error) {
	return s.consultants.GetConsultantByUserID(ctx, actor.UserID)
}

// UpdateConsultant updates a profile. Commission rate and active flag are admin only.
func (s *consultantServiceImpl) UpdateConsultant(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateConsultantRequest) (*models.Consultant, error) {
	k, err := s.consultants.GetConsultantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && k.UserID != actor.UserID {
		return nil, apperrors.NewForbiddenError("you can only update your own consultant profile")
	}
	if !actor.IsAdmin() && (req.CommissionRate != nil || req.IsActive != nil) {
		return nil, apperrors.NewForbiddenError("only admins can change commission rate or active status")
	}

	if req.Bio != nil {
		k.Bio = validation.SanitizeRichText(*req.Bio)
	}
	if req.Specializations != nil {
		k.Specializations = validation.SanitizeList(req.Specializations)
	}
	if req.CommissionRate != nil {
		if !validCommissionRate(*req.CommissionRate) {
			return nil, apperrors.NewValidationError("commission rate must be between 0 and 1",
				map[string]interface{}{"commissionRate": "must be between 0 and 1"})
		}
		k.CommissionRate = *req.CommissionRate
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}

	if err := s.consultants.UpdateConsultant(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// ListConsultants lists consultants, trimming the specialization filter
func (s *consultantServiceImpl) ListConsultants(ctx context.Context, filter models.ConsultantFilter) ([]*models.Consultant, int64, error) {
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	return s.consultants.ListConsultants(ctx, filter)
}

// ListPlacements lists the hires credited to a consultant; self or admin
func (s *consultantServiceImpl) ListPlacements(ctx context.Context, actor models.Actor, consultantID int64, page, size int) ([]*models.Application, int64, error) {
	k, err := s.consultants.GetConsultantByID(ctx, consultantID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() && k.UserID != actor.UserID {
		return nil, 0, apperrors.NewForbiddenError("you can only view your own placements")
	}

	hired := models.StatusHired
	return s.applications.ListApplications(ctx, models.ApplicationFilter{
		ConsultantID: &k.ID,
		Status:       &hired,
		Page:         page,
		Size:         size,
	})
}
