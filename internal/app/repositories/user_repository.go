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

var userColumns = []string{
	"u.id", "u.email", "u.password", "u.first_name", "u.last_name", "u.role",
	"u.is_active", "u.company_id", "u.last_login_at", "u.created_at", "u.updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role,
		&u.IsActive, &u.CompanyID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a user and returns its id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	return createUser(ctx, r.db, r.sb, user)
}

func createUser(ctx context.Context, q querier, sb squirrel.StatementBuilderType, user *models.User) (int64, error) {
	sql, args, err := sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role", "is_active", "company_id").
		Values(strings.ToLower(user.Email), user.Password, user.FirstName, user.LastName, user.Role, user.IsActive, user.CompanyID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return user.ID, nil
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"u.id": id})
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"u.email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) getUser(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users u").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// UpdateLastLogin stamps a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.updateUser(ctx, id, map[string]interface{}{"last_login_at": at})
}

// SetActive enables or disables an account
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.updateUser(ctx, id, map[string]interface{}{"is_active": active, "updated_at": time.Now()})
}

// SetCompany links an employer to a company
func (r *UserRepository) SetCompany(ctx context.Context, id int64, companyID *int64) error {
	return r.updateUser(ctx, id, map[string]interface{}{"company_id": companyID, "updated_at": time.Now()})
}

func (r *UserRepository) updateUser(ctx context.Context, id int64, fields map[string]interface{}) error {
	sql, args, err := r.sb.Update("users").SetMap(fields).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListUsers searches users by role, active flag and email substring
func (r *UserRepository) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Role != nil {
		where = append(where, squirrel.Eq{"u.role": *filter.Role})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"u.is_active": *filter.Active})
	}
	if strings.TrimSpace(filter.Email) != "" {
		where = append(where, squirrel.ILike{"u.email": likePattern(filter.Email)})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("users u").Where(where), "users")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.User{}, 0, nil
	}

	query := paginate(r.sb.Select(userColumns...).From("users u").Where(where).OrderBy("u.created_at DESC", "u.id DESC"), filter.Page, filter.Size)
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}
