package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/auth"
	"github.com/yigit/hireloop/internal/pkg/email"
	"github.com/yigit/hireloop/internal/pkg/validation"
)

// TokenIssuer creates access/refresh token pairs
type TokenIssuer interface {
	GenerateTokenPair(user *models.User) (*auth.TokenPair, error)
}

// AuthService handles registration, login and refresh token rotation
type AuthService struct {
	users       UserStore
	tokens      TokenStore
	candidates  CandidateStore
	consultants ConsultantStore
	config      ConfigStore
	jwtService  TokenIssuer
	mailer      email.EmailService
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens TokenStore,
	candidates CandidateStore,
	consultants ConsultantStore,
	config ConfigStore,
	jwtService TokenIssuer,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		candidates:  candidates,
		consultants: consultants,
		config:      config,
		jwtService:  jwtService,
		mailer:      mailer,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a user account and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	emailAddr := validation.NormalizeEmail(req.Email)
	if !validation.IsValidEmail(emailAddr) {
		return nil, fmt.Errorf("%w: email has an invalid format", apperrors.ErrInvalidEmail)
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if !req.Role.SelfRegistrable() {
		return nil, apperrors.NewForbiddenError("this role cannot be chosen at registration")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hashed,
		FirstName: validation.SanitizeText(req.FirstName),
		LastName:  validation.SanitizeText(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", id).Msg("Failed to send welcome email")
	}

	s.logger.Info().Int64("userID", id).Str("role", string(user.Role)).Msg("User registered")
	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user)}, nil
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user)}, nil
}

// RefreshToken rotates a refresh token and issues a fresh pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, _, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	if err := s.tokens.RotateToken(ctx, refreshToken, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}
	return tokenResponse(pair), nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.RevokeToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// GetCurrentUser returns the user with the id of its role-specific profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	profileID, err := s.profileID(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.ProfileID = profileID
	return resp, nil
}

func (s *AuthService) profileID(ctx context.Context, user *models.User) (*int64, error) {
	var (
		id  int64
		err error
	)
	switch user.Role {
	case models.RoleCandidate:
		var p *models.CandidateProfile
		if p, err = s.candidates.GetProfileByUserID(ctx, user.ID); err == nil {
			id = p.ID
		}
	case models.RoleConsultant:
		var k *models.Consultant
		if k, err = s.consultants.GetConsultantByUserID(ctx, user.ID); err == nil {
			id = k.ID
		}
	case models.RoleAdmin:
		var a *models.AdminProfile
		if a, err = s.config.GetAdminProfileByUserID(ctx, user.ID); err == nil {
			id = a.ID
		}
	default:
		return nil, nil
	}

	if err != nil {
		if apperrors.IsAny(err, apperrors.ErrResourceNotFound, apperrors.ErrCandidateNotFound, apperrors.ErrConsultantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return tokenResponse(pair), nil
}

func tokenResponse(pair *auth.TokenPair) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}
}
