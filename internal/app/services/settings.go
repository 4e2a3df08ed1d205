package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
)

// Settings reads typed values out of the system configuration table.
// Missing or malformed entries fall back to the given default.
type Settings struct {
	store  ConfigStore
	logger zerolog.Logger
}

// NewSettings creates a new Settings reader
func NewSettings(store ConfigStore, logger zerolog.Logger) *Settings {
	return &Settings{store: store, logger: logger}
}

func (s *Settings) load(ctx context.Context, key string, dest interface{}) bool {
	cfg, err := s.store.GetConfig(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrConfigurationNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read configuration")
		}
		return false
	}
	if err := json.Unmarshal(cfg.Value, dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Configuration value has an unexpected type")
		return false
	}
	return true
}

// Int returns an integer setting
func (s *Settings) Int(ctx context.Context, key string, fallback int) int {
	var v int
	if !s.load(ctx, key, &v) {
		return fallback
	}
	return v
}

// Bool returns a boolean setting
func (s *Settings) Bool(ctx context.Context, key string, fallback bool) bool {
	var v bool
	if !s.load(ctx, key, &v) {
		return fallback
	}
	return v
}

// Decimal returns a decimal setting stored as a JSON number or string
func (s *Settings) Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	var v decimal.Decimal
	if !s.load(ctx, key, &v) {
		return fallback
	}
	return v
}

// MaxApplicationsPerDay returns the daily cap, 0 meaning unlimited
func (s *Settings) MaxApplicationsPerDay(ctx context.Context) int {
	return s.Int(ctx, models.ConfigMaxApplicationsPerDay, 0)
}

// DefaultCommissionRate returns the rate given to new consultants
func (s *Settings) DefaultCommissionRate(ctx context.Context) decimal.Decimal {
	return s.Decimal(ctx, models.ConfigDefaultCommissionRate, models.DefaultCommissionRate)
}

// MaintenanceEnabled reports whether the platform is in maintenance mode
func (s *Settings) MaintenanceEnabled(ctx context.Context) bool {
	return s.Bool(ctx, models.ConfigMaintenanceMode, false)
}
