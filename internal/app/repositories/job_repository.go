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

var jobColumns = []string{
	"j.id", "j.company_id", "c.name", "j.title", "j.description", "j.location", "j.employment_type",
	"j.experience_level", "j.remote", "j.salary_min", "j.salary_max", "j.currency", "j.skills",
	"j.status", "j.positions", "j.positions_filled", "j.consultant_id", "j.posted_by",
	"j.published_at", "j.closes_at", "j.created_at", "j.updated_at",
}

// JobRepository handles job database operations
type JobRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db, sb: newBuilder()}
}

func scanJob(row pgx.Row) (*models.Job, error) {
	j := &models.Job{}
	err := row.Scan(&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &j.Location, &j.EmploymentType,
		&j.ExperienceLevel, &j.Remote, &j.SalaryMin, &j.SalaryMax, &j.Currency, &j.Skills,
		&j.Status, &j.Positions, &j.PositionsFilled, &j.ConsultantID, &j.PostedBy,
		&j.PublishedAt, &j.ClosesAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *JobRepository) selectJobs() squirrel.SelectBuilder {
	return r.sb.Select(jobColumns...).From("jobs j").Join("companies c ON c.id = j.company_id")
}

// CreateJob inserts a job
func (r *JobRepository) CreateJob(ctx context.Context, job *models.Job) (int64, error) {
	sql, args, err := r.sb.Insert("jobs").
		Columns("company_id", "title", "description", "location", "employment_type", "experience_level",
			"remote", "salary_min", "salary_max", "currency", "skills", "status", "positions",
			"consultant_id", "posted_by", "published_at", "closes_at").
		Values(job.CompanyID, job.Title, job.Description, job.Location, job.EmploymentType, job.ExperienceLevel,
			job.Remote, job.SalaryMin, job.SalaryMax, job.Currency, jsonArray(job.Skills), job.Status, job.Positions,
			job.ConsultantID, job.PostedBy, job.PublishedAt, job.ClosesAt).
		Suffix("RETURNING id, positions_filled, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create job SQL")
		return 0, fmt.Errorf("failed to build create job query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&job.ID, &job.PositionsFilled, &job.CreatedAt, &job.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCompanyNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return 0, apperrors.NewBadRequestError("job violates a salary or position constraint")
		}
		logger.Error().Err(err).Int64("companyID", job.CompanyID).Msg("Error executing create job query")
		return 0, fmt.Errorf("error creating job: %w", err)
	}
	return job.ID, nil
}

// GetJobByID retrieves a live job with its company name
func (r *JobRepository) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	sql, args, err := r.selectJobs().
		Where(squirrel.Eq{"j.id": id, "j.deleted_at": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get job SQL")
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	j, err := scanJob(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		logger.Error().Err(err).Int64("jobID", id).Msg("Error scanning job row")
		return nil, fmt.Errorf("error getting job by ID: %w", err)
	}
	return j, nil
}

// UpdateJob saves editable job fields; status and counters are changed elsewhere
func (r *JobRepository) UpdateJob(ctx context.Context, job *models.Job) error {
	sql, args, err := r.sb.Update("jobs").
		SetMap(map[string]interface{}{
			"title":            job.Title,
			"description":      job.Description,
			"location":         job.Location,
			"employment_type":  job.EmploymentType,
			"experience_level": job.ExperienceLevel,
			"remote":           job.Remote,
			"salary_min":       job.SalaryMin,
			"salary_max":       job.SalaryMax,
			"currency":         job.Currency,
			"skills":           jsonArray(job.Skills),
			"positions":        job.Positions,
			"closes_at":        job.ClosesAt,
			"updated_at":       time.Now(),
		}).
		Where(squirrel.Eq{"id": job.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update job SQL")
		return fmt.Errorf("failed to build update job query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("positions cannot drop below the number already filled")
		}
		logger.Error().Err(err).Int64("jobID", job.ID).Msg("Error executing update job query")
		return fmt.Errorf("error updating job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// UpdateJobStatus moves a job from one status to another. The from status is
// part of the predicate, so a concurrent change yields ErrConflict.
func (r *JobRepository) UpdateJobStatus(ctx context.Context, id int64, from, to models.JobStatus, publishedAt *time.Time) error {
	fields := map[string]interface{}{"status": to, "updated_at": time.Now()}
	if publishedAt != nil {
		fields["published_at"] = squirrel.Expr("COALESCE(published_at, ?)", *publishedAt)
	}

	sql, args, err := r.sb.Update("jobs").
		SetMap(fields).
		Where(squirrel.Eq{"id": id, "status": from, "deleted_at": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update job status SQL")
		return fmt.Errorf("failed to build update job status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("jobID", id).Msg("Error executing update job status query")
		return fmt.Errorf("error updating job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("job status changed concurrently, reload and retry")
	}
	return nil
}

// AssignConsultant sets or clears the consultant of a job
func (r *JobRepository) AssignConsultant(ctx context.Context, jobID int64, consultantID *int64) error {
	sql, args, err := r.sb.Update("jobs").
		Set("consultant_id", consultantID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": jobID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign consultant query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrConsultantNotFound
		}
		logger.Error().Err(err).Int64("jobID", jobID).Msg("Error assigning consultant")
		return fmt.Errorf("error assigning consultant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// SoftDeleteJob marks a job deleted
func (r *JobRepository) SoftDeleteJob(ctx context.Context, id int64) error {
	now := time.Now()
	sql, args, err := r.sb.Update("jobs").
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete job query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("jobID", id).Msg("Error deleting job")
		return fmt.Errorf("error deleting job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

func jobConditions(f models.JobFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"j.deleted_at": nil, "c.deleted_at": nil}}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"j.title": likePattern(kw)},
			squirrel.ILike{"j.description": likePattern(kw)},
		})
	}
	if strings.TrimSpace(f.Location) != "" {
		where = append(where, squirrel.ILike{"j.location": likePattern(f.Location)})
	}
	if f.EmploymentType != nil {
		where = append(where, squirrel.Eq{"j.employment_type": *f.EmploymentType})
	}
	if f.ExperienceLevel != nil {
		where = append(where, squirrel.Eq{"j.experience_level": *f.ExperienceLevel})
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"j.status": *f.Status})
	}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"j.company_id": *f.CompanyID})
	}
	if f.ConsultantID != nil {
		where = append(where, squirrel.Eq{"j.consultant_id": *f.ConsultantID})
	}
	if f.Remote != nil {
		where = append(where, squirrel.Eq{"j.remote": *f.Remote})
	}
	if f.MinSalary != nil {
		where = append(where, squirrel.GtOrEq{"j.salary_max": *f.MinSalary})
	}
	if strings.TrimSpace(f.Skill) != "" {
		where = append(where, skillCondition("j.skills", f.Skill))
	}
	return where
}

// SearchJobs returns one page of jobs matching every given filter
func (r *JobRepository) SearchJobs(ctx context.Context, filter models.JobFilter) ([]*models.Job, int64, error) {
	where := jobConditions(filter)

	count := r.sb.Select("COUNT(*)").From("jobs j").Join("companies c ON c.id = j.company_id").Where(where)
	total, err := countRows(ctx, r.db, count, "jobs")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Job{}, 0, nil
	}

	query := paginate(r.selectJobs().Where(where).OrderBy("COALESCE(j.published_at, j.created_at) DESC", "j.id DESC"), filter.Page, filter.Size)
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building search jobs SQL")
		return nil, 0, fmt.Errorf("failed to build search jobs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing search jobs query")
		return nil, 0, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning job row")
			return nil, 0, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, total, nil
}
