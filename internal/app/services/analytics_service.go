package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/cache"
)

// AnalyticsService defines the interface for dashboards
type AnalyticsService interface {
	PlatformOverview(ctx context.Context, actor models.Actor) (*models.PlatformOverview, error)
	CompanyDashboard(ctx context.Context, actor models.Actor, companyID int64) (*models.CompanyDashboard, error)
	ConsultantDashboard(ctx context.Context, actor models.Actor, consultantID int64) (*models.ConsultantDashboard, error)
}

type analyticsServiceImpl struct {
	store       AnalyticsStore
	companies   CompanyStore
	consultants ConsultantStore
	authz       *auth.AuthorizationService
	cache       cache.Cache
	ttl         time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAnalyticsService creates a new analytics service instance
func NewAnalyticsService(
	store AnalyticsStore,
	companies CompanyStore,
	consultants ConsultantStore,
	authz *auth.AuthorizationService,
	cacheStore cache.Cache,
	ttl time.Duration,
	logger zerolog.Logger,
) AnalyticsService {
	return &analyticsServiceImpl{
		store:       store,
		companies:   companies,
		consultants: consultants,
		authz:       authz,
		cache:       cacheStore,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
}

// cached returns the value under key, or computes and stores it
func cached[T any](ctx context.Context, s *analyticsServiceImpl, key string, compute func() (*T, error)) (*T, error) {
	var hit T
	err := s.cache.Get(ctx, key, &hit)
	if err == nil {
		return &hit, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("Analytics cache read failed")
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Analytics cache write failed")
	}
	return value, nil
}

// PlatformOverview is available to admins only
func (s *analyticsServiceImpl) PlatformOverview(ctx context.Context, actor models.Actor) (*models.PlatformOverview, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only admins can view the platform overview")
	}
	return cached(ctx, s, cache.PlatformOverviewKey(), func() (*models.PlatformOverview, error) {
		return s.store.PlatformOverview(ctx, s.now())
	})
}

// CompanyDashboard is available to the company's employers and admins
func (s *analyticsServiceImpl) CompanyDashboard(ctx context.Context, actor models.Actor, companyID int64) (*models.CompanyDashboard, error) {
	company, err := s.companies.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := auth.Require(s.authz.CanManageCompany(ctx, actor, company)); err != nil {
		return nil, err
	}
	return cached(ctx, s, cache.CompanyDashboardKey(companyID), func() (*models.CompanyDashboard, error) {
		return s.store.CompanyDashboard(ctx, companyID)
	})
}

// ConsultantDashboard is available to the consultant and admins
func (s *analyticsServiceImpl) ConsultantDashboard(ctx context.Context, actor models.Actor, consultantID int64) (*models.ConsultantDashboard, error) {
	consultant, err := s.consultants.GetConsultantByID(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && consultant.UserID != actor.UserID {
		return nil, apperrors.NewForbiddenError("you can only view your own dashboard")
	}
	return cached(ctx, s, cache.ConsultantDashboardKey(consultantID), func() (*models.ConsultantDashboard, error) {
		return s.store.ConsultantDashboard(ctx, consultantID)
	})
}
