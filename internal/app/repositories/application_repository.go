package repositories

import (
	"context"
	"errors"
	"fmt"
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

var applicationColumns = []string{
	"a.id", "a.job_id", "a.candidate_id", "a.consultant_id", "a.status", "a.cover_letter",
	"a.match_score", "a.rating", "a.rejection_reason", "a.interview_at", "a.offered_salary",
	"a.placement_fee", "a.submitted_at", "a.reviewed_at", "a.hired_at", "a.updated_at",
	"j.title", "j.company_id", "p.user_id", "u.first_name || ' ' || u.last_name", "k.user_id",
}

// ApplicationRepository handles application and status history database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db, sb: newBuilder()}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	a := &models.Application{}
	err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.ConsultantID, &a.Status, &a.CoverLetter,
		&a.MatchScore, &a.Rating, &a.RejectionReason, &a.InterviewAt, &a.OfferedSalary,
		&a.PlacementFee, &a.SubmittedAt, &a.ReviewedAt, &a.HiredAt, &a.UpdatedAt,
		&a.JobTitle, &a.CompanyID, &a.CandidateUserID, &a.CandidateName, &a.ConsultantUserID)
	return a, err
}

func (r *ApplicationRepository) selectApplications() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("jobs j ON j.id = a.job_id").
		Join("candidate_profiles p ON p.id = a.candidate_id").
		Join("users u ON u.id = p.user_id").
		LeftJoin("consultants k ON k.id = a.consultant_id")
}

// CreateApplication inserts a SUBMITTED application together with its first history row
func (r *ApplicationRepository) CreateApplication(ctx context.Context, a *models.Application, actorID int64) (int64, error) {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("applications").
			Columns("job_id", "candidate_id", "consultant_id", "status", "cover_letter", "match_score", "submitted_at", "updated_at").
			Values(a.JobID, a.CandidateID, a.ConsultantID, models.StatusSubmitted, a.CoverLetter, a.MatchScore, a.SubmittedAt, a.SubmittedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create application query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&a.ID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "applications_job_candidate_key") {
				return apperrors.ErrAlreadyApplied
			}
			return fmt.Errorf("error creating application: %w", err)
		}

		a.Status = models.StatusSubmitted
		a.UpdatedAt = a.SubmittedAt
		return r.insertHistory(ctx, tx, &models.StatusHistory{
			ApplicationID: a.ID,
			ToStatus:      models.StatusSubmitted,
			ChangedBy:     actorID,
			CreatedAt:     a.SubmittedAt,
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyApplied) {
			logger.Error().Err(err).Int64("jobID", a.JobID).Int64("candidateID", a.CandidateID).Msg("Error creating application")
		}
		return 0, err
	}
	return a.ID, nil
}

// GetApplicationByID retrieves an application with job, candidate and consultant context
func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.selectApplications().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get application SQL")
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	a, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return a, nil
}

// ListApplications returns one page of applications matching the filter
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error) {
	where := squirrel.Eq{}
	if filter.JobID != nil {
		where["a.job_id"] = *filter.JobID
	}
	if filter.CandidateID != nil {
		where["a.candidate_id"] = *filter.CandidateID
	}
	if filter.ConsultantID != nil {
		where["a.consultant_id"] = *filter.ConsultantID
	}
	if filter.Status != nil {
		where["a.status"] = *filter.Status
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("applications a").Where(where), "applications")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Application{}, 0, nil
	}

	sql, args, err := paginate(r.selectApplications().Where(where).OrderBy("a.submitted_at DESC", "a.id DESC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, 0, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	list := []*models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, 0, fmt.Errorf("failed to scan application row: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return list, total, nil
}

// CountApplicationsSince counts a candidate's applications submitted at or after since
func (r *ApplicationRepository) CountApplicationsSince(ctx context.Context, candidateID int64, since time.Time) (int64, error) {
	count := r.sb.Select("COUNT(*)").From("applications").
		Where(squirrel.Eq{"candidate_id": candidateID}).
		Where(squirrel.GtOrEq{"submitted_at": since})
	return countRows(ctx, r.db, count, "recent applications")
}

// ListStatusHistory returns the history of an application, oldest first
func (r *ApplicationRepository) ListStatusHistory(ctx context.Context, applicationID int64) ([]*models.StatusHistory, error) {
	sql, args, err := r.sb.Select("id", "application_id", "from_status", "to_status", "changed_by", "note", "created_at").
		From("application_status_history").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list history query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error executing list history query")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	history := []*models.StatusHistory{}
	for rows.Next() {
		h := &models.StatusHistory{}
		if err := rows.Scan(&h.ID, &h.ApplicationID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Note, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}

// SetRating stores a 1..5 rating
func (r *ApplicationRepository) SetRating(ctx context.Context, applicationID int64, rating int) error {
	sql, args, err := r.sb.Update("applications").
		Set("rating", rating).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": applicationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rate application query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("rating must be between 1 and 5")
		}
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error rating application")
		return fmt.Errorf("error rating application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) insertHistory(ctx context.Context, q querier, h *models.StatusHistory) error {
	sql, args, err := r.sb.Insert("application_status_history").
		Columns("application_id", "from_status", "to_status", "changed_by", "note", "created_at").
		Values(h.ApplicationID, h.FromStatus, h.ToStatus, h.ChangedBy, h.Note, h.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert history query: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&h.ID); err != nil {
		return fmt.Errorf("error inserting status history: %w", err)
	}
	return nil
}

// statusChangeFields is the SET clause of an application update for a change
func statusChangeFields(c *models.StatusChange) map[string]interface{} {
	fields := map[string]interface{}{
		"status":     c.To,
		"updated_at": c.At,
	}
	if c.From == models.StatusSubmitted {
		fields["reviewed_at"] = squirrel.Expr("COALESCE(reviewed_at, ?)", c.At)
	}
	switch c.To {
	case models.StatusInterviewScheduled:
		fields["interview_at"] = c.InterviewAt
	case models.StatusOfferExtended:
		if c.OfferedSalary.Valid {
			fields["offered_salary"] = c.OfferedSalary
		}
	case models.StatusRejected:
		fields["rejection_reason"] = c.RejectionReason
	case models.StatusHired:
		fields["hired_at"] = c.At
		if c.PlacementFee.Valid {
			fields["placement_fee"] = c.PlacementFee
		}
	}
	return fields
}

// ApplyStatusChange performs every row change of a status transition in one
// transaction: the application row (guarded by its current status), the history
// row and, for HIRED, job position accounting and consultant placement totals.
func (r *ApplicationRepository) ApplyStatusChange(ctx context.Context, c *models.StatusChange) (*models.StatusChangeResult, error) {
	result := &models.StatusChangeResult{}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("applications").
			SetMap(statusChangeFields(c)).
			Where(squirrel.Eq{"id": c.ApplicationID, "status": c.From}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build status update query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error updating application status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewConflictError("application status changed concurrently, reload and retry")
		}

		from := c.From
		if err := r.insertHistory(ctx, tx, &models.StatusHistory{
			ApplicationID: c.ApplicationID,
			FromStatus:    &from,
			ToStatus:      c.To,
			ChangedBy:     c.ChangedBy,
			Note:          c.Note,
			CreatedAt:     c.At,
		}); err != nil {
			return err
		}

		if c.To != models.StatusHired {
			return nil
		}

		filled, err := r.fillPosition(ctx, tx, c.JobID, c.At)
		if err != nil {
			return err
		}
		result.JobFilled = filled

		if c.ConsultantID != nil {
			return r.bookPlacement(ctx, tx, *c.ConsultantID, c)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) && !errors.Is(err, apperrors.ErrNoOpenPositions) {
			logger.Error().Err(err).Int64("applicationID", c.ApplicationID).Str("to", string(c.To)).Msg("Error applying status change")
		}
		return nil, err
	}
	return result, nil
}

// fillPosition takes one unfilled position. An OPEN or PAUSED job turns FILLED
// with the last one; a CLOSED job only counts the hire.
func (r *ApplicationRepository) fillPosition(ctx context.Context, tx pgx.Tx, jobID int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("jobs").
		Set("positions_filled", squirrel.Expr("positions_filled + 1")).
		Set("status", squirrel.Expr("CASE WHEN positions_filled + 1 >= positions AND status IN (?, ?) THEN ? ELSE status END",
			models.JobStatusOpen, models.JobStatusPaused, models.JobStatusFilled)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": jobID}).
		Where("positions_filled < positions").
		Suffix("RETURNING status").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build fill position query: %w", err)
	}

	var status models.JobStatus
	if err := tx.QueryRow(ctx, sql, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrNoOpenPositions
		}
		return false, fmt.Errorf("error filling job position: %w", err)
	}
	return status == models.JobStatusFilled, nil
}

func (r *ApplicationRepository) bookPlacement(ctx context.Context, tx pgx.Tx, consultantID int64, c *models.StatusChange) error {
	update := r.sb.Update("consultants").
		Set("total_placements", squirrel.Expr("total_placements + 1")).
		Set("updated_at", c.At).
		Where(squirrel.Eq{"id": consultantID})
	if c.PlacementFee.Valid {
		update = update.Set("total_fees", squirrel.Expr("total_fees + ?", c.PlacementFee.Decimal))
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build placement query: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error booking consultant placement: %w", err)
	}
	return nil
}
