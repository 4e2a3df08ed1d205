package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// AdminService defines the interface for user administration and system configuration
type AdminService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
	SetUserActive(ctx context.Context, actor models.Actor, userID int64, active bool) (*models.User, error)
	GetAdminProfile(ctx context.Context, actor models.Actor) (*models.AdminProfile, error)

	ListConfigs(ctx context.Context, publicOnly bool) ([]*models.SystemConfiguration, error)
	GetConfig(ctx context.Context, key string, publicOnly bool) (*models.SystemConfiguration, error)
	UpsertConfig(ctx context.Context, actor models.Actor, key string, req *dto.UpsertConfigRequest) (*models.SystemConfiguration, error)
	DeleteConfig(ctx context.Context, key string) error
}

type adminServiceImpl struct {
	users  UserStore
	tokens TokenStore
	config ConfigStore
	logger zerolog.Logger
}

// NewAdminService creates a new admin service instance
func NewAdminService(users UserStore, tokens TokenStore, config ConfigStore, logger zerolog.Logger) AdminService {
	return &adminServiceImpl{
		users:  users,
		tokens: tokens,
		config: config,
		logger: logger,
	}
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	filter.Email = strings.TrimSpace(filter.Email)
	return s.users.ListUsers(ctx, filter)
}

// SetUserActive activates or deactivates an account. Deactivation revokes the
// user's refresh tokens.
func (s *adminServiceImpl) SetUserActive(ctx context.Context, actor models.Actor, userID int64, active bool) (*models.User, error) {
	if !active && userID == actor.UserID {
		return nil, apperrors.NewBadRequestError("you cannot deactivate your own account")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	if !active {
		if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke tokens of deactivated user")
		}
	}

	s.logger.Info().Int64("userID", userID).Bool("active", active).Int64("adminID", actor.UserID).Msg("User active flag changed")
	return user, nil
}

func (s *adminServiceImpl) GetAdminProfile(ctx context.Context, actor models.Actor) (*models.AdminProfile, error) {
	return s.config.GetAdminProfileByUserID(ctx, actor.UserID)
}

func (s *adminServiceImpl) ListConfigs(ctx context.Context, publicOnly bool) ([]*models.SystemConfiguration, error) {
	return s.config.ListConfigs(ctx, publicOnly)
}

// GetConfig returns one entry; with publicOnly a private entry reads as missing
func (s *adminServiceImpl) GetConfig(ctx context.Context, key string, publicOnly bool) (*models.SystemConfiguration, error) {
	cfg, err := s.config.GetConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	if publicOnly && !cfg.IsPublic {
		return nil, apperrors.ErrConfigurationNotFound
	}
	return cfg, nil
}

// UpsertConfig validates the value against the entry's JSON Schema and stores it.
// Without a schema in the request the stored schema keeps applying.
func (s *adminServiceImpl) UpsertConfig(ctx context.Context, actor models.Actor, key string, req *dto.UpsertConfigRequest) (*models.SystemConfiguration, error) {
	key = strings.TrimSpace(key)
	if !validation.IsValidConfigKey(key) {
		return nil, apperrors.NewValidationError("invalid configuration key",
			map[string]interface{}{"key": "must match [a-z0-9_.]+"})
	}

	schema := req.Schema
	if isJSONNull(schema) {
		schema = nil
	}
	if len(schema) == 0 {
		existing, err := s.config.GetConfig(ctx, key)
		switch {
		case err == nil:
			schema = existing.Schema
		case !errors.Is(err, apperrors.ErrConfigurationNotFound):
			return nil, err
		}
	} else if err := validation.ValidateJSONSchema(schema); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"schema": "invalid JSON schema"})
	}

	if err := validation.ValidateJSONAgainstSchema(req.Value, schema); err != nil {
		var schemaErr *validation.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, apperrors.NewValidationError(apperrors.ErrInvalidConfigValue.Error(),
				map[string]interface{}{"value": schemaErr.Violations})
		}
		return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"value": err.Error()})
	}

	updatedBy := actor.UserID
	cfg := &models.SystemConfiguration{
		Key:         key,
		Value:       req.Value,
		Description: validation.SanitizeText(req.Description),
		IsPublic:    req.IsPublic,
		Schema:      schema,
		UpdatedBy:   &updatedBy,
	}
	if err := s.config.UpsertConfig(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info().Str("key", key).Int64("adminID", actor.UserID).Msg("Configuration updated")
	return cfg, nil
}

func (s *adminServiceImpl) DeleteConfig(ctx context.Context, key string) error {
	return s.config.DeleteConfig(ctx, key)
}

func isJSONNull(raw []byte) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
