package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hireloop/internal/pkg/helpers"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	CompanyRepository      *CompanyRepository
	JobRepository          *JobRepository
	CandidateRepository    *CandidateRepository
	ConsultantRepository   *ConsultantRepository
	ApplicationRepository  *ApplicationRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
	ConfigRepository       *ConfigRepository
	AnalyticsRepository    *AnalyticsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		CompanyRepository:      NewCompanyRepository(db),
		JobRepository:          NewJobRepository(db),
		CandidateRepository:    NewCandidateRepository(db),
		ConsultantRepository:   NewConsultantRepository(db),
		ApplicationRepository:  NewApplicationRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		ConfigRepository:       NewConfigRepository(db),
		AnalyticsRepository:    NewAnalyticsRepository(db),
	}
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// countRows runs a COUNT(*) select
func countRows(ctx context.Context, q querier, count squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := count.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error building count SQL")
		return 0, fmt.Errorf("failed to build count %s query: %w", what, err)
	}

	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error executing count query")
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return total, nil
}

// paginate applies LIMIT/OFFSET for a 1-based page
func paginate(q squirrel.SelectBuilder, page, size int) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return q.Limit(limit).Offset(offset)
}

// likePattern escapes LIKE wildcards in user input and wraps it in %...%
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// jsonArray keeps NOT NULL jsonb array columns from receiving SQL NULL
func jsonArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func jsonObject(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

// skillCondition matches rows whose jsonb skill array contains skill, ignoring case
func skillCondition(column, skill string) squirrel.Sqlizer {
	return squirrel.Expr(
		"EXISTS (SELECT 1 FROM jsonb_array_elements_text("+column+") AS s(skill) WHERE LOWER(s.skill) = LOWER(?))",
		strings.TrimSpace(skill),
	)
}
