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
	"github.com/yigit/hireloop/internal/db"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/dberrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

const companyNameConstraint = "companies_name_active_key"

var companyColumns = []string{
	"c.id", "c.name", "c.industry", "c.size", "c.website", "c.description", "c.location",
	"c.logo_url", "c.is_verified", "c.owner_id", "c.metadata", "c.created_at", "c.updated_at",
}

// CompanyRepository handles company database operations
type CompanyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db, sb: newBuilder()}
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Size, &c.Website, &c.Description, &c.Location,
		&c.LogoURL, &c.IsVerified, &c.OwnerID, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCompany inserts a company. When linkOwner is set the owner's
// users.company_id is pointed at it in the same transaction.
func (r *CompanyRepository) CreateCompany(ctx context.Context, company *models.Company, linkOwner bool) (int64, error) {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("companies").
			Columns("name", "industry", "size", "website", "description", "location", "logo_url", "owner_id", "metadata").
			Values(company.Name, company.Industry, company.Size, company.Website, company.Description,
				company.Location, company.LogoURL, company.OwnerID, jsonObject(company.Metadata)).
			Suffix("RETURNING id, is_verified, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create company query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&company.ID, &company.IsVerified, &company.CreatedAt, &company.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, companyNameConstraint) {
				return apperrors.ErrCompanyAlreadyExists
			}
			return fmt.Errorf("error creating company: %w", err)
		}

		if !linkOwner {
			return nil
		}
		sql, args, err = r.sb.Update("users").
			Set("company_id", company.ID).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": company.OwnerID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build link owner query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error linking company owner: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrCompanyAlreadyExists) {
			logger.Error().Err(err).Str("name", company.Name).Msg("Error creating company")
		}
		return 0, err
	}
	return company.ID, nil
}

// GetCompanyByID retrieves a live company
func (r *CompanyRepository) GetCompanyByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns...).
		From("companies c").
		Where(squirrel.Eq{"c.id": id, "c.deleted_at": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get company SQL")
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	c, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		logger.Error().Err(err).Int64("companyID", id).Msg("Error scanning company row")
		return nil, fmt.Errorf("error getting company by ID: %w", err)
	}
	return c, nil
}

// UpdateCompany saves mutable company fields
func (r *CompanyRepository) UpdateCompany(ctx context.Context, c *models.Company) error {
	sql, args, err := r.sb.Update("companies").
		SetMap(map[string]interface{}{
			"name":        c.Name,
			"industry":    c.Industry,
			"size":        c.Size,
			"website":     c.Website,
			"description": c.Description,
			"location":    c.Location,
			"logo_url":    c.LogoURL,
			"metadata":    jsonObject(c.Metadata),
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": c.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update company SQL")
		return fmt.Errorf("failed to build update company query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, companyNameConstraint) {
			return apperrors.ErrCompanyAlreadyExists
		}
		logger.Error().Err(err).Int64("companyID", c.ID).Msg("Error executing update company query")
		return fmt.Errorf("error updating company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// SoftDeleteCompany marks a company deleted
func (r *CompanyRepository) SoftDeleteCompany(ctx context.Context, id int64) error {
	now := time.Now()
	return r.touch(ctx, id, map[string]interface{}{"deleted_at": now, "updated_at": now})
}

// SetVerified toggles the verified badge
func (r *CompanyRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	return r.touch(ctx, id, map[string]interface{}{"is_verified": verified, "updated_at": time.Now()})
}

func (r *CompanyRepository) touch(ctx context.Context, id int64, fields map[string]interface{}) error {
	sql, args, err := r.sb.Update("companies").SetMap(fields).Where(squirrel.Eq{"id": id, "deleted_at": nil}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build company update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("companyID", id).Msg("Error updating company")
		return fmt.Errorf("error updating company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

func companyConditions(f models.CompanyFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"c.deleted_at": nil}}
	if strings.TrimSpace(f.Name) != "" {
		where = append(where, squirrel.ILike{"c.name": likePattern(f.Name)})
	}
	if strings.TrimSpace(f.Industry) != "" {
		where = append(where, squirrel.Eq{"c.industry": strings.TrimSpace(f.Industry)})
	}
	if strings.TrimSpace(f.Location) != "" {
		where = append(where, squirrel.ILike{"c.location": likePattern(f.Location)})
	}
	if f.Verified != nil {
		where = append(where, squirrel.Eq{"c.is_verified": *f.Verified})
	}
	return where
}

// SearchCompanies returns one page of live companies matching every given filter
func (r *CompanyRepository) SearchCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error) {
	where := companyConditions(filter)

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("companies c").Where(where), "companies")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Company{}, 0, nil
	}

	sql, args, err := paginate(r.sb.Select(companyColumns...).From("companies c").Where(where).OrderBy("c.name ASC", "c.id ASC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building search companies SQL")
		return nil, 0, fmt.Errorf("failed to build search companies query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing search companies query")
		return nil, 0, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning company row")
			return nil, 0, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating company rows: %w", err)
	}
	return companies, total, nil
}
