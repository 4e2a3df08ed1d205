package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// CompanyService defines the interface for company-related operations
type CompanyService interface {
	CreateCompany(ctx context.Context, actor models.Actor, req *dto.CreateCompanyRequest) (*models.Company, error)
	GetCompanyByID(ctx context.Context, id int64) (*models.Company, error)
	SearchCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error)
	UpdateCompany(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error)
	DeleteCompany(ctx context.Context, actor models.Actor, id int64) error
	VerifyCompany(ctx context.Context, actor models.Actor, id int64, verified bool) (*models.Company, error)
}

type companyServiceImpl struct {
	companies CompanyStore
	authz     *auth.AuthorizationService
	logger    zerolog.Logger
}

// NewCompanyService creates a new company service instance
func NewCompanyService(companies CompanyStore, authz *auth.AuthorizationService, logger zerolog.Logger) CompanyService {
	return &companyServiceImpl{
		companies: companies,
		authz:     authz,
		logger:    logger,
	}
}

// CreateCompany registers a company. An employer becomes its owner and member.
func (s *companyServiceImpl) CreateCompany(ctx context.Context, actor models.Actor, req *dto.CreateCompanyRequest) (*models.Company, error) {
	if actor.Role != models.RoleEmployer && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only employers and admins can create companies")
	}

	company := &models.Company{
		Name:        strings.TrimSpace(validation.SanitizeText(req.Name)),
		Industry:    strings.TrimSpace(req.Industry),
		Size:        req.Size,
		Website:     strings.TrimSpace(req.Website),
		Description: validation.SanitizeRichText(req.Description),
		Location:    strings.TrimSpace(req.Location),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		OwnerID:     actor.UserID,
		Metadata:    req.Metadata,
	}
	if company.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}

	id, err := s.companies.CreateCompany(ctx, company, actor.Role == models.RoleEmployer)
	if err != nil {
		return nil, err
	}
	company.ID = id

	s.logger.Info().Int64("companyID", id).Int64("ownerID", actor.UserID).Msg("Company created")
	return company, nil
}

func (s *companyServiceImpl) GetCompanyByID(ctx context.Context, id int64) (*models.Company, error) {
	return s.companies.GetCompanyByID(ctx, id)
}

// SearchCompanies lists non-deleted companies matching the filter
func (s *companyServiceImpl) SearchCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error) {
	return s.companies.SearchCompanies(ctx, filter)
}

// UpdateCompany applies a partial update
func (s *companyServiceImpl) UpdateCompany(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.companies.GetCompanyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.Require(s.authz.CanManageCompany(ctx, actor, company)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = strings.TrimSpace(validation.SanitizeText(*req.Name))
	}
	if req.Industry != nil {
		company.Industry = strings.TrimSpace(*req.Industry)
	}
	if req.Size != nil {
		company.Size = *req.Size
	}
	if req.Website != nil {
		company.Website = strings.TrimSpace(*req.Website)
	}
	if req.Description != nil {
		company.Description = validation.SanitizeRichText(*req.Description)
	}
	if req.Location != nil {
		company.Location = strings.TrimSpace(*req.Location)
	}
	if req.LogoURL != nil {
		company.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.Metadata != nil {
		company.Metadata = req.Metadata
	}

	if err := s.companies.UpdateCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany soft-deletes a company
func (s *companyServiceImpl) DeleteCompany(ctx context.Context, actor models.Actor, id int64) error {
	company, err := s.companies.GetCompanyByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.CanDeleteCompany(actor, company) {
		return apperrors.NewForbiddenError("only the owner or an admin can delete this company")
	}

	if err := s.companies.SoftDeleteCompany(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("companyID", id).Int64("actorID", actor.UserID).Msg("Company deleted")
	return nil
}

// VerifyCompany sets the verified flag; admins only
func (s *companyServiceImpl) VerifyCompany(ctx context.Context, actor models.Actor, id int64, verified bool) (*models.Company, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only admins can verify companies")
	}
	if err := s.companies.SetVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	return s.companies.GetCompanyByID(ctx, id)
}
