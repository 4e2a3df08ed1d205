package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/dberrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

var configColumns = []string{
	"id", "key", "value", "description", "is_public", "COALESCE(schema::text, '')", "updated_by", "created_at", "updated_at",
}

// ConfigRepository handles system configuration and admin profile storage
type ConfigRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{db: db, sb: newBuilder()}
}

func scanConfig(row pgx.Row) (*models.SystemConfiguration, error) {
	c := &models.SystemConfiguration{}
	var schema string
	err := row.Scan(&c.ID, &c.Key, &c.Value, &c.Description, &c.IsPublic, &schema, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if schema != "" {
		c.Schema = json.RawMessage(schema)
	}
	return c, err
}

// GetConfig retrieves a configuration entry by key
func (r *ConfigRepository) GetConfig(ctx context.Context, key string) (*models.SystemConfiguration, error) {
	sql, args, err := r.sb.Select(configColumns...).From("system_configurations").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get config query: %w", err)
	}

	c, err := scanConfig(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConfigurationNotFound
		}
		logger.Error().Err(err).Str("key", key).Msg("Error getting configuration")
		return nil, fmt.Errorf("error getting configuration: %w", err)
	}
	return c, nil
}

// UpsertConfig inserts or replaces a configuration entry by key
func (r *ConfigRepository) UpsertConfig(ctx context.Context, c *models.SystemConfiguration) error {
	var schema interface{}
	if len(c.Schema) > 0 {
		schema = c.Schema
	}

	sql, args, err := r.sb.Insert("system_configurations").
		Columns("key", "value", "description", "is_public", "schema", "updated_by").
		Values(c.Key, c.Value, c.Description, c.IsPublic, schema, c.UpdatedBy).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value, description = EXCLUDED.description, is_public = EXCLUDED.is_public,
			schema = EXCLUDED.schema, updated_by = EXCLUDED.updated_by, updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert config query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("key", c.Key).Msg("Error upserting configuration")
		return fmt.Errorf("error upserting configuration: %w", err)
	}
	return nil
}

// InsertConfigIfMissing creates the entry unless the key exists; reports whether it inserted
func (r *ConfigRepository) InsertConfigIfMissing(ctx context.Context, c *models.SystemConfiguration) (bool, error) {
	var schema interface{}
	if len(c.Schema) > 0 {
		schema = c.Schema
	}

	sql, args, err := r.sb.Insert("system_configurations").
		Columns("key", "value", "description", "is_public", "schema").
		Values(c.Key, c.Value, c.Description, c.IsPublic, schema).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert config query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error inserting configuration %s: %w", c.Key, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListConfigs lists configuration entries ordered by key
func (r *ConfigRepository) ListConfigs(ctx context.Context, publicOnly bool) ([]*models.SystemConfiguration, error) {
	query := r.sb.Select(configColumns...).From("system_configurations").OrderBy("key")
	if publicOnly {
		query = query.Where(squirrel.Eq{"is_public": true})
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list config query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing configuration")
		return nil, fmt.Errorf("failed to query configuration: %w", err)
	}
	defer rows.Close()

	list := []*models.SystemConfiguration{}
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration row: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating configuration rows: %w", err)
	}
	return list, nil
}

// DeleteConfig removes a configuration entry
func (r *ConfigRepository) DeleteConfig(ctx context.Context, key string) error {
	sql, args, err := r.sb.Delete("system_configurations").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete config query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Error deleting configuration")
		return fmt.Errorf("error deleting configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConfigurationNotFound
	}
	return nil
}

// CreateAdminProfile stores the admin profile of a user
func (r *ConfigRepository) CreateAdminProfile(ctx context.Context, p *models.AdminProfile) (int64, error) {
	sql, args, err := r.sb.Insert("admin_profiles").
		Columns("user_id", "department", "permissions", "is_super_admin").
		Values(p.UserID, p.Department, jsonArray(p.Permissions), p.IsSuperAdmin).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create admin profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "admin_profiles_user_id_key") {
			return 0, apperrors.ErrProfileExists
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error creating admin profile")
		return 0, fmt.Errorf("error creating admin profile: %w", err)
	}
	return p.ID, nil
}

// GetAdminProfileByUserID retrieves the admin profile of a user
func (r *ConfigRepository) GetAdminProfileByUserID(ctx context.Context, userID int64) (*models.AdminProfile, error) {
	sql, args, err := r.sb.Select("id", "user_id", "department", "permissions", "is_super_admin", "created_at").
		From("admin_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin profile query: %w", err)
	}

	p := &models.AdminProfile{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.UserID, &p.Department, &p.Permissions, &p.IsSuperAdmin, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("admin profile not found")
		}
		return nil, fmt.Errorf("error getting admin profile: %w", err)
	}
	return p, nil
}
