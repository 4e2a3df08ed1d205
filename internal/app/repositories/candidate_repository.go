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

var candidateColumns = []string{
	"p.id", "p.user_id", "u.first_name", "u.last_name", "u.email", "p.headline", "p.summary",
	"p.location", "p.years_experience", "p.skills", "p.certifications", "p.desired_salary",
	"p.resume_url", "p.open_to_work", "p.metadata", "p.created_at", "p.updated_at",
}

// CandidateRepository handles candidate profile database operations
type CandidateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: db, sb: newBuilder()}
}

func scanCandidate(row pgx.Row) (*models.CandidateProfile, error) {
	p := &models.CandidateProfile{}
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Headline, &p.Summary,
		&p.Location, &p.YearsExperience, &p.Skills, &p.Certifications, &p.DesiredSalary,
		&p.ResumeURL, &p.OpenToWork, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func certifications(c []models.Certification) []models.Certification {
	if c == nil {
		return []models.Certification{}
	}
	return c
}

// CreateProfile inserts a profile. A soft-deleted profile of the same user is
// revived in place; a live one yields ErrProfileExists.
func (r *CandidateRepository) CreateProfile(ctx context.Context, p *models.CandidateProfile) (int64, error) {
	sql, args, err := r.sb.Insert("candidate_profiles").
		Columns("user_id", "headline", "summary", "location", "years_experience", "skills",
			"certifications", "desired_salary", "resume_url", "open_to_work", "metadata").
		Values(p.UserID, p.Headline, p.Summary, p.Location, p.YearsExperience, jsonArray(p.Skills),
			certifications(p.Certifications), p.DesiredSalary, p.ResumeURL, p.OpenToWork, jsonObject(p.Metadata)).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			headline = EXCLUDED.headline, summary = EXCLUDED.summary, location = EXCLUDED.location,
			years_experience = EXCLUDED.years_experience, skills = EXCLUDED.skills,
			certifications = EXCLUDED.certifications, desired_salary = EXCLUDED.desired_salary,
			resume_url = EXCLUDED.resume_url, open_to_work = EXCLUDED.open_to_work,
			metadata = EXCLUDED.metadata, deleted_at = NULL, created_at = NOW(), updated_at = NOW()
			WHERE candidate_profiles.deleted_at IS NOT NULL
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create candidate profile SQL")
		return 0, fmt.Errorf("failed to build create profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrProfileExists
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error executing create profile query")
		return 0, fmt.Errorf("error creating candidate profile: %w", err)
	}
	return p.ID, nil
}

// GetProfileByID retrieves a live profile
func (r *CandidateRepository) GetProfileByID(ctx context.Context, id int64) (*models.CandidateProfile, error) {
	return r.getProfile(ctx, squirrel.Eq{"p.id": id})
}

// GetProfileByUserID retrieves the live profile of a user
func (r *CandidateRepository) GetProfileByUserID(ctx context.Context, userID int64) (*models.CandidateProfile, error) {
	return r.getProfile(ctx, squirrel.Eq{"p.user_id": userID})
}

func (r *CandidateRepository) getProfile(ctx context.Context, where squirrel.Eq) (*models.CandidateProfile, error) {
	where["p.deleted_at"] = nil
	sql, args, err := r.sb.Select(candidateColumns...).
		From("candidate_profiles p").
		Join("users u ON u.id = p.user_id").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get candidate profile SQL")
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p, err := scanCandidate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCandidateNotFound
		}
		logger.Error().Err(err).Msg("Error scanning candidate profile row")
		return nil, fmt.Errorf("error getting candidate profile: %w", err)
	}
	return p, nil
}

// UpdateProfile saves editable profile fields
func (r *CandidateRepository) UpdateProfile(ctx context.Context, p *models.CandidateProfile) error {
	return r.update(ctx, p.ID, map[string]interface{}{
		"headline":         p.Headline,
		"summary":          p.Summary,
		"location":         p.Location,
		"years_experience": p.YearsExperience,
		"skills":           jsonArray(p.Skills),
		"certifications":   certifications(p.Certifications),
		"desired_salary":   p.DesiredSalary,
		"open_to_work":     p.OpenToWork,
		"metadata":         jsonObject(p.Metadata),
		"updated_at":       time.Now(),
	})
}

// UpdateResume stores the resume location
func (r *CandidateRepository) UpdateResume(ctx context.Context, id int64, resumeURL string) error {
	return r.update(ctx, id, map[string]interface{}{"resume_url": resumeURL, "updated_at": time.Now()})
}

// SoftDeleteProfile marks a profile deleted
func (r *CandidateRepository) SoftDeleteProfile(ctx context.Context, id int64) error {
	now := time.Now()
	return r.update(ctx, id, map[string]interface{}{"deleted_at": now, "updated_at": now})
}

func (r *CandidateRepository) update(ctx context.Context, id int64, fields map[string]interface{}) error {
	sql, args, err := r.sb.Update("candidate_profiles").SetMap(fields).Where(squirrel.Eq{"id": id, "deleted_at": nil}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("profileID", id).Msg("Error updating candidate profile")
		return fmt.Errorf("error updating candidate profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCandidateNotFound
	}
	return nil
}

func candidateConditions(f models.CandidateFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"p.deleted_at": nil, "u.is_active": true}}
	if strings.TrimSpace(f.Skill) != "" {
		where = append(where, skillCondition("p.skills", f.Skill))
	}
	if strings.TrimSpace(f.Location) != "" {
		where = append(where, squirrel.ILike{"p.location": likePattern(f.Location)})
	}
	if f.MinExperience != nil {
		where = append(where, squirrel.GtOrEq{"p.years_experience": *f.MinExperience})
	}
	if f.OpenToWork != nil {
		where = append(where, squirrel.Eq{"p.open_to_work": *f.OpenToWork})
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, squirrel.Or{
			squirrel.ILike{"p.headline": likePattern(kw)},
			squirrel.ILike{"p.summary": likePattern(kw)},
		})
	}
	return where
}

// SearchProfiles returns one page of live profiles matching every given filter
func (r *CandidateRepository) SearchProfiles(ctx context.Context, filter models.CandidateFilter) ([]*models.CandidateProfile, int64, error) {
	where := candidateConditions(filter)

	count := r.sb.Select("COUNT(*)").From("candidate_profiles p").Join("users u ON u.id = p.user_id").Where(where)
	total, err := countRows(ctx, r.db, count, "candidate profiles")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.CandidateProfile{}, 0, nil
	}

	query := paginate(r.sb.Select(candidateColumns...).
		From("candidate_profiles p").
		Join("users u ON u.id = p.user_id").
		Where(where).
		OrderBy("p.updated_at DESC", "p.id DESC"), filter.Page, filter.Size)
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building search candidates SQL")
		return nil, 0, fmt.Errorf("failed to build search candidates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing search candidates query")
		return nil, 0, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	profiles := []*models.CandidateProfile{}
	for rows.Next() {
		p, err := scanCandidate(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning candidate row")
			return nil, 0, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating candidate rows: %w", err)
	}
	return profiles, total, nil
}
