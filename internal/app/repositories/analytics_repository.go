package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// funnelStages are the pipeline steps counted by the company funnel, in order
var funnelStages = []models.ApplicationStatus{
	models.StatusSubmitted,
	models.StatusUnderReview,
	models.StatusShortlisted,
	models.StatusInterviewScheduled,
	models.StatusInterviewed,
	models.StatusOfferExtended,
	models.StatusHired,
}

const topJobsLimit = 5

// AnalyticsRepository runs the aggregate queries behind the dashboards
type AnalyticsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db, sb: newBuilder()}
}

// groupCount runs "SELECT <col>, COUNT(*) ... GROUP BY <col>" and collects the result
func (r *AnalyticsRepository) groupCount(ctx context.Context, q squirrel.SelectBuilder, what string) (map[string]int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error running analytics query")
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", what, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

func toJobStatusCounts(m map[string]int64) map[models.JobStatus]int64 {
	out := make(map[models.JobStatus]int64, len(m))
	for k, v := range m {
		out[models.JobStatus(k)] = v
	}
	return out
}

func toApplicationStatusCounts(m map[string]int64) map[models.ApplicationStatus]int64 {
	out := make(map[models.ApplicationStatus]int64, len(m))
	for k, v := range m {
		out[models.ApplicationStatus(k)] = v
	}
	return out
}

// PlatformOverview aggregates platform-wide counters
func (r *AnalyticsRepository) PlatformOverview(ctx context.Context, now time.Time) (*models.PlatformOverview, error) {
	users, err := r.groupCount(ctx,
		r.sb.Select("role", "COUNT(*)").From("users").GroupBy("role"), "users by role")
	if err != nil {
		return nil, err
	}

	overview := &models.PlatformOverview{UsersByRole: make(map[models.Role]int64, len(users))}
	for k, v := range users {
		overview.UsersByRole[models.Role(k)] = v
	}

	companies := r.sb.Select("COUNT(*)", "COUNT(*) FILTER (WHERE is_verified)").
		From("companies").Where(squirrel.Eq{"deleted_at": nil})
	sql, args, err := companies.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build company count query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&overview.TotalCompanies, &overview.VerifiedCompanies); err != nil {
		logger.Error().Err(err).Msg("Error counting companies")
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	jobs, err := r.groupCount(ctx,
		r.sb.Select("status", "COUNT(*)").From("jobs").Where(squirrel.Eq{"deleted_at": nil}).GroupBy("status"),
		"jobs by status")
	if err != nil {
		return nil, err
	}
	overview.JobsByStatus = toJobStatusCounts(jobs)

	apps, err := r.groupCount(ctx,
		r.sb.Select("status", "COUNT(*)").From("applications").GroupBy("status"), "applications by status")
	if err != nil {
		return nil, err
	}
	overview.ApplicationsByStatus = toApplicationStatusCounts(apps)

	hires := r.sb.Select("COUNT(*)").From("applications").
		Where(squirrel.Eq{"status": models.StatusHired}).
		Where(squirrel.GtOrEq{"hired_at": now.AddDate(0, 0, -30)})
	overview.HiresLast30Days, err = countRows(ctx, r.db, hires, "recent hires")
	if err != nil {
		return nil, err
	}
	return overview, nil
}

// CompanyDashboard aggregates hiring activity for one company
func (r *AnalyticsRepository) CompanyDashboard(ctx context.Context, companyID int64) (*models.CompanyDashboard, error) {
	dash := &models.CompanyDashboard{CompanyID: companyID}

	jobs, err := r.groupCount(ctx,
		r.sb.Select("status", "COUNT(*)").From("jobs").
			Where(squirrel.Eq{"company_id": companyID, "deleted_at": nil}).GroupBy("status"),
		"company jobs by status")
	if err != nil {
		return nil, err
	}
	dash.JobsByStatus = toJobStatusCounts(jobs)

	apps, err := r.groupCount(ctx,
		r.sb.Select("a.status", "COUNT(*)").From("applications a").
			Join("jobs j ON j.id = a.job_id").
			Where(squirrel.Eq{"j.company_id": companyID}).GroupBy("a.status"),
		"company applications by status")
	if err != nil {
		return nil, err
	}
	dash.ApplicationsByStatus = toApplicationStatusCounts(apps)

	// An application reached a stage if its history ever recorded that status.
	reached, err := r.groupCount(ctx,
		r.sb.Select("h.to_status", "COUNT(DISTINCT h.application_id)").
			From("application_status_history h").
			Join("applications a ON a.id = h.application_id").
			Join("jobs j ON j.id = a.job_id").
			Where(squirrel.Eq{"j.company_id": companyID}).
			GroupBy("h.to_status"),
		"company funnel")
	if err != nil {
		return nil, err
	}
	dash.Funnel = buildFunnel(reached)
	dash.OfferAcceptanceRate = acceptanceRate(reached)

	avg := r.sb.Select("COALESCE(AVG(EXTRACT(EPOCH FROM (a.hired_at - a.submitted_at)) / 86400), 0)").
		From("applications a").
		Join("jobs j ON j.id = a.job_id").
		Where(squirrel.Eq{"j.company_id": companyID, "a.status": models.StatusHired}).
		Where(squirrel.NotEq{"a.hired_at": nil})
	sql, args, err := avg.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build time to hire query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&dash.AvgTimeToHireDays); err != nil {
		logger.Error().Err(err).Int64("companyID", companyID).Msg("Error computing time to hire")
		return nil, fmt.Errorf("failed to compute time to hire: %w", err)
	}

	top := r.sb.Select("j.id", "j.title", "COUNT(a.id) AS applications").
		From("jobs j").
		LeftJoin("applications a ON a.job_id = j.id").
		Where(squirrel.Eq{"j.company_id": companyID, "j.deleted_at": nil}).
		GroupBy("j.id", "j.title").
		OrderBy("applications DESC", "j.id").
		Limit(topJobsLimit)
	sql, args, err = top.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top jobs query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("companyID", companyID).Msg("Error querying top jobs")
		return nil, fmt.Errorf("failed to query top jobs: %w", err)
	}
	defer rows.Close()

	dash.TopJobs = []models.JobApplicationCount{}
	for rows.Next() {
		var c models.JobApplicationCount
		if err := rows.Scan(&c.JobID, &c.Title, &c.Applications); err != nil {
			return nil, fmt.Errorf("failed to scan top job row: %w", err)
		}
		dash.TopJobs = append(dash.TopJobs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top jobs: %w", err)
	}
	return dash, nil
}

// ConsultantDashboard aggregates placements for one consultant
func (r *AnalyticsRepository) ConsultantDashboard(ctx context.Context, consultantID int64) (*models.ConsultantDashboard, error) {
	dash := &models.ConsultantDashboard{ConsultantID: consultantID}

	sql, args, err := r.sb.Select("total_placements", "total_fees").
		From("consultants").Where(squirrel.Eq{"id": consultantID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build consultant totals query: %w", err)
	}
	var fees decimal.Decimal
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&dash.TotalPlacements, &fees); err != nil {
		logger.Error().Err(err).Int64("consultantID", consultantID).Msg("Error loading consultant totals")
		return nil, fmt.Errorf("failed to load consultant totals: %w", err)
	}
	dash.TotalFees = fees

	apps, err := r.groupCount(ctx,
		r.sb.Select("status", "COUNT(*)").From("applications").
			Where(squirrel.Eq{"consultant_id": consultantID}).GroupBy("status"),
		"consultant applications by status")
	if err != nil {
		return nil, err
	}
	dash.ApplicationsByStatus = toApplicationStatusCounts(apps)
	for status, n := range dash.ApplicationsByStatus {
		if !status.IsTerminal() {
			dash.ActiveApplications += n
		}
	}
	return dash, nil
}

func buildFunnel(reached map[string]int64) []models.FunnelStage {
	funnel := make([]models.FunnelStage, 0, len(funnelStages))
	for _, s := range funnelStages {
		funnel = append(funnel, models.FunnelStage{Status: s, Reached: reached[string(s)]})
	}
	return funnel
}

// acceptanceRate is hires over offers, 0 when no offer was ever extended
func acceptanceRate(reached map[string]int64) float64 {
	offers := reached[string(models.StatusOfferExtended)]
	if offers == 0 {
		return 0
	}
	return float64(reached[string(models.StatusHired)]) / float64(offers)
}
