package seed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/hireloop/internal/app/models"
	appRepos "github.com/yigit/hireloop/internal/app/repositories"
	"github.com/yigit/hireloop/internal/config"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/auth"
)

// defaultConfigs are inserted once; admin edits are never overwritten
var defaultConfigs = []appModels.SystemConfiguration{
	{
		Key:         appModels.ConfigMaxApplicationsPerDay,
		Value:       json.RawMessage(`20`),
		Description: "Maximum applications a candidate may submit per rolling day (0 = unlimited)",
		IsPublic:    true,
		Schema:      json.RawMessage(`{"type":"integer","minimum":0}`),
	},
	{
		Key:         appModels.ConfigDefaultCommissionRate,
		Value:       json.RawMessage(`"` + appModels.DefaultCommissionRate.String() + `"`),
		Description: "Commission rate given to newly registered consultants",
		IsPublic:    false,
		Schema:      json.RawMessage(`{"type":"string","pattern":"^(0(\\.[0-9]+)?|1(\\.0+)?)$"}`),
	},
	{
		Key:         appModels.ConfigMaintenanceMode,
		Value:       json.RawMessage(`false`),
		Description: "Rejects write requests from non-admin users while enabled",
		IsPublic:    true,
		Schema:      json.RawMessage(`{"type":"boolean"}`),
	},
}

// CreateDefaultData creates the default admin account and system configuration
// entries if they don't exist. Every step runs; errors are collected.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	configRepo := appRepos.NewConfigRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (admin account, system configuration)...")
	var finalErr error

	for i := range defaultConfigs {
		entry := defaultConfigs[i]
		inserted, err := configRepo.InsertConfigIfMissing(ctx, &entry)
		if err != nil {
			lgr.Error().Err(err).Str("key", entry.Key).Msg("Error creating default configuration")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if inserted {
			lgr.Info().Str("key", entry.Key).Msg("Default configuration created")
		}
	}

	if err := createAdmin(ctx, userRepo, configRepo, cfg, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, users *appRepos.UserRepository, configs *appRepos.ConfigRepository, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		lgr.Warn().Msg("Admin email or password not configured, skipping admin seed")
		return nil
	}

	existing, err := users.GetUserByEmail(ctx, cfg.Admin.Email)
	switch {
	case err == nil:
		lgr.Info().Str("email", existing.Email).Msg("Admin user already exists, skipping creation")
		return ensureAdminProfile(ctx, configs, existing.ID, lgr)
	case !errors.Is(err, apperrors.ErrUserNotFound):
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	lgr.Info().Msg("Creating default admin user...")
	hashedPassword, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.User{
		Email:     cfg.Admin.Email,
		Password:  hashedPassword,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Role:      appModels.RoleAdmin,
		IsActive:  true,
	}
	adminID, err := users.CreateUser(ctx, admin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}
	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")

	return ensureAdminProfile(ctx, configs, adminID, lgr)
}

func ensureAdminProfile(ctx context.Context, configs *appRepos.ConfigRepository, userID int64, lgr zerolog.Logger) error {
	_, err := configs.CreateAdminProfile(ctx, &appModels.AdminProfile{
		UserID:       userID,
		Department:   "Platform",
		Permissions:  []string{"*"},
		IsSuperAdmin: true,
	})
	if err != nil && !errors.Is(err, apperrors.ErrProfileExists) {
		lgr.Error().Err(err).Int64("userID", userID).Msg("Error creating admin profile")
		return err
	}
	return nil
}
