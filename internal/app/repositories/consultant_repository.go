package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/dberrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

var consultantColumns = []string{
	"k.id", "k.user_id", "u.first_name", "u.last_name", "u.email", "k.bio", "k.specializations",
	"k.commission_rate", "k.is_active", "k.total_placements", "k.total_fees", "k.rating",
	"k.created_at", "k.updated_at",
}

// ConsultantRepository handles consultant database operations
type ConsultantRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewConsultantRepository creates a new ConsultantRepository
func NewConsultantRepository(db *pgxpool.Pool) *ConsultantRepository {
	return &ConsultantRepository{db: db, sb: newBuilder()}
}

func scanConsultant(row pgx.Row) (*models.Consultant, error) {
	k := &models.Consultant{}
	err := row.Scan(&k.ID, &k.UserID, &k.FirstName, &k.LastName, &k.Email, &k.Bio, &k.Specializations,
		&k.CommissionRate, &k.IsActive, &k.TotalPlacements, &k.TotalFees, &k.Rating,
		&k.CreatedAt, &k.UpdatedAt)
	return k, err
}

func (r *ConsultantRepository) selectConsultants() squirrel.SelectBuilder {
	return r.sb.Select(consultantColumns...).From("consultants k").Join("users u ON u.id = k.user_id")
}

// CreateConsultant inserts a consultant profile
func (r *ConsultantRepository) CreateConsultant(ctx context.Context, k *models.Consultant) (int64, error) {
	sql, args, err := r.sb.Insert("consultants").
		Columns("user_id", "bio", "specializations", "commission_rate", "is_active").
		Values(k.UserID, k.Bio, jsonArray(k.Specializations), k.CommissionRate, k.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create consultant SQL")
		return 0, fmt.Errorf("failed to build create consultant query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&k.ID, &k.CreatedAt, &k.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "consultants_user_id_key") {
			return 0, apperrors.ErrProfileExists
		}
		logger.Error().Err(err).Int64("userID", k.UserID).Msg("Error executing create consultant query")
		return 0, fmt.Errorf("error creating consultant: %w", err)
	}
	return k.ID, nil
}

// GetConsultantByID retrieves a consultant
func (r *ConsultantRepository) GetConsultantByID(ctx context.Context, id int64) (*models.Consultant, error) {
	return r.getConsultant(ctx, squirrel.Eq{"k.id": id})
}

// GetConsultantByUserID retrieves the consultant profile of a user
func (r *ConsultantRepository) GetConsultantByUserID(ctx context.Context, userID int64) (*models.Consultant, error) {
	return r.getConsultant(ctx, squirrel.Eq{"k.user_id": userID})
}

func (r *ConsultantRepository) getConsultant(ctx context.Context, where squirrel.Eq) (*models.Consultant, error) {
	sql, args, err := r.selectConsultants().Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get consultant SQL")
		return nil, fmt.Errorf("failed to build get consultant query: %w", err)
	}

	k, err := scanConsultant(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConsultantNotFound
		}
		logger.Error().Err(err).Msg("Error scanning consultant row")
		return nil, fmt.Errorf("error getting consultant: %w", err)
	}
	return k, nil
}

// UpdateConsultant saves bio, specializations, commission rate and active flag
func (r *ConsultantRepository) UpdateConsultant(ctx context.Context, k *models.Consultant) error {
	sql, args, err := r.sb.Update("consultants").
		SetMap(map[string]interface{}{
			"bio":             k.Bio,
			"specializations": jsonArray(k.Specializations),
			"commission_rate": k.CommissionRate,
			"is_active":       k.IsActive,
			"updated_at":      time.Now(),
		}).
		Where(squirrel.Eq{"id": k.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update consultant query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("commission rate must be between 0 and 1")
		}
		logger.Error().Err(err).Int64("consultantID", k.ID).Msg("Error updating consultant")
		return fmt.Errorf("error updating consultant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConsultantNotFound
	}
	return nil
}

// ListConsultants returns one page of consultants
func (r *ConsultantRepository) ListConsultants(ctx context.Context, filter models.ConsultantFilter) ([]*models.Consultant, int64, error) {
	where := squirrel.And{}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"k.is_active": *filter.Active})
	}
	if s := strings.TrimSpace(filter.Specialization); s != "" {
		where = append(where, skillCondition("k.specializations", s))
	}

	count := r.sb.Select("COUNT(*)").From("consultants k").Join("users u ON u.id = k.user_id").Where(where)
	total, err := countRows(ctx, r.db, count, "consultants")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Consultant{}, 0, nil
	}

	sql, args, err := paginate(r.selectConsultants().Where(where).OrderBy("k.total_placements DESC", "k.id ASC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list consultants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list consultants query")
		return nil, 0, fmt.Errorf("failed to query consultants: %w", err)
	}
	defer rows.Close()

	list := []*models.Consultant{}
	for rows.Next() {
		k, err := scanConsultant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan consultant row: %w", err)
		}
		list = append(list, k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating consultant rows: %w", err)
	}
	return list, total, nil
}
