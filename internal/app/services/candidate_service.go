package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/filestorage"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// CandidateService defines the interface for candidate profile operations
type CandidateService interface {
	CreateProfile(ctx context.Context, actor models.Actor, req *dto.CandidateProfileRequest) (*models.CandidateProfile, error)
	GetProfile(ctx context.Context, actor models.Actor, id int64) (*models.CandidateProfile, error)
	GetMyProfile(ctx context.Context, actor models.Actor) (*models.CandidateProfile, error)
	UpdateMyProfile(ctx context.Context, actor models.Actor, req *dto.CandidateProfileRequest) (*models.CandidateProfile, error)
	DeleteMyProfile(ctx context.Context, actor models.Actor) error
	SearchProfiles(ctx context.Context, actor models.Actor, filter models.CandidateFilter) ([]*models.CandidateProfile, int64, error)
	UploadResume(ctx context.Context, actor models.Actor, file *multipart.FileHeader) (*models.CandidateProfile, error)
}

type candidateServiceImpl struct {
	candidates CandidateStore
	storage    filestorage.FileStorage
	logger     zerolog.Logger
}

// NewCandidateService creates a new candidate service instance
func NewCandidateService(candidates CandidateStore, storage filestorage.FileStorage, logger zerolog.Logger) CandidateService {
	return &candidateServiceImpl{
		candidates: candidates,
		storage:    storage,
		logger:     logger,
	}
}

func sanitizeCertifications(certs []models.Certification) []models.Certification {
	out := make([]models.Certification, 0, len(certs))
	for _, c := range certs {
		c.Name = strings.TrimSpace(validation.SanitizeText(c.Name))
		c.Issuer = strings.TrimSpace(validation.SanitizeText(c.Issuer))
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// applyProfileRequest copies request fields onto the profile
func applyProfileRequest(p *models.CandidateProfile, req *dto.CandidateProfileRequest) error {
	p.Headline = strings.TrimSpace(validation.SanitizeText(req.Headline))
	p.Summary = validation.SanitizeRichText(req.Summary)
	p.Location = strings.TrimSpace(req.Location)
	p.YearsExperience = req.YearsExperience
	p.Skills = validation.SanitizeList(req.Skills)
	p.Certifications = sanitizeCertifications(req.Certifications)
	p.DesiredSalary = nullDecimal(req.DesiredSalary)
	if req.OpenToWork != nil {
		p.OpenToWork = *req.OpenToWork
	}
	if req.Metadata != nil {
		p.Metadata = req.Metadata
	}

	if p.Headline == "" {
		return apperrors.NewValidationError("headline cannot be empty", map[string]interface{}{"headline": "headline is required"})
	}
	if p.DesiredSalary.Valid && p.DesiredSalary.Decimal.IsNegative() {
		return apperrors.NewValidationError("desired salary must not be negative", map[string]interface{}{"desiredSalary": "must be >= 0"})
	}
	return nil
}

func requireCandidate(actor models.Actor) error {
	if actor.Role != models.RoleCandidate {
		return apperrors.NewForbiddenError("only candidates have candidate profiles")
	}
	return nil
}

// CreateProfile creates the caller's candidate profile
func (s *candidateServiceImpl) CreateProfile(ctx context.Context, actor models.Actor, req *dto.CandidateProfileRequest) (*models.CandidateProfile, error) {
	if err := requireCandidate(actor); err != nil {
		return nil, err
	}

	profile := &models.CandidateProfile{UserID: actor.UserID, OpenToWork: true}
	if err := applyProfileRequest(profile, req); err != nil {
		return nil, err
	}

	id, err := s.candidates.CreateProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	profile.ID = id

	s.logger.Info().Int64("profileID", id).Int64("userID", actor.UserID).Msg("Candidate profile created")
	return profile, nil
}

// GetProfile returns a profile; candidates may only view their own
func (s *candidateServiceImpl) GetProfile(ctx context.Context, actor models.Actor, id int64) (*models.CandidateProfile, error) {
	profile, err := s.candidates.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCandidate && profile.UserID != actor.UserID {
		return nil, apperrors.NewForbiddenError("candidates can only view their own profile")
	}
	return profile, nil
}

func (s *candidateServiceImpl) GetMyProfile(ctx context.Context, actor models.Actor) (*models.CandidateProfile, error) {
	return s.candidates.GetProfileByUserID(ctx, actor.UserID)
}

// UpdateMyProfile replaces the caller's profile fields
func (s *candidateServiceImpl) UpdateMyProfile(ctx context.Context, actor models.Actor, req *dto.CandidateProfileRequest) (*models.CandidateProfile, error) {
	if err := requireCandidate(actor); err != nil {
		return nil, err
	}

	profile, err := s.candidates.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := applyProfileRequest(profile, req); err != nil {
		return nil, err
	}
	if err := s.candidates.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteMyProfile soft-deletes the caller's profile
func (s *candidateServiceImpl) DeleteMyProfile(ctx context.Context, actor models.Actor) error {
	profile, err := s.candidates.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	return s.candidates.SoftDeleteProfile(ctx, profile.ID)
}

// SearchProfiles is available to employers, consultants and admins
func (s *candidateServiceImpl) SearchProfiles(ctx context.Context, actor models.Actor, filter models.CandidateFilter) ([]*models.CandidateProfile, int64, error) {
	if actor.Role == models.RoleCandidate {
		return nil, 0, apperrors.NewForbiddenError("candidates cannot search other candidates")
	}
	return s.candidates.SearchProfiles(ctx, filter)
}

// UploadResume stores a resume file and links it to the caller's profile
func (s *candidateServiceImpl) UploadResume(ctx context.Context, actor models.Actor, file *multipart.FileHeader) (*models.CandidateProfile, error) {
	if err := requireCandidate(actor); err != nil {
		return nil, err
	}
	profile, err := s.candidates.GetProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := filestorage.ValidateResume(file); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	url, err := s.storage.SaveResume(file)
	if err != nil {
		return nil, err
	}
	if err := s.candidates.UpdateResume(ctx, profile.ID, url); err != nil {
		if delErr := s.storage.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned resume")
		}
		return nil, err
	}

	if old := profile.ResumeURL; old != "" && old != url {
		if err := s.storage.DeleteFile(old); err != nil {
			s.logger.Warn().Err(err).Str("url", old).Msg("Failed to remove previous resume")
		}
	}
	profile.ResumeURL = url
	return profile, nil
}
