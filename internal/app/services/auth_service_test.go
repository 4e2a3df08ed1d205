package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/auth"
)

func newTestAuthService(w *world) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-with-enough-entropy",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "hireloop-test",
	})
	return NewAuthService(w.users, w.tokens, w.candidates, w.consultants, w.config, jwtService, w.mailer, testLogger)
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "  New.User@Example.com ",
		Password:  "Secret123",
		FirstName: "New",
		LastName:  "User",
		Role:      models.RoleCandidate,
	}
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	w := newWorld()
	svc := newTestAuthService(w)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", registered.User.Email)
	assert.Equal(t, "Bearer", registered.Token.TokenType)
	assert.NotEmpty(t, registered.Token.AccessToken)
	assert.NotEmpty(t, registered.Token.RefreshToken)
	require.Len(t, w.mailer.sent, 1)
	assert.Equal(t, "welcome", w.mailer.sent[0].kind)

	stored := w.users.byID[registered.User.ID]
	assert.NotEqual(t, "Secret123", stored.Password)

	loggedIn, err := svc.Login(ctx, &dto.LoginRequest{Email: "NEW.USER@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.NotNil(t, loggedIn.User.LastLoginAt)

	refreshed, err := svc.RefreshToken(ctx, loggedIn.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, loggedIn.Token.RefreshToken, refreshed.RefreshToken)

	// rotated tokens cannot be replayed
	_, err = svc.RefreshToken(ctx, loggedIn.Token.RefreshToken)
	assert.Error(t, err)

	require.NoError(t, svc.Logout(ctx, refreshed.RefreshToken))
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.Error(t, err)

	assert.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestRegisterValidation(t *testing.T) {
	w := newWorld()
	svc := newTestAuthService(w)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *dto.RegisterRequest)
		wantErr error
	}{
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, apperrors.ErrInvalidEmail},
		{"weak password", func(r *dto.RegisterRequest) { r.Password = "password" }, apperrors.ErrInvalidPassword},
		{"admin role", func(r *dto.RegisterRequest) { r.Role = models.RoleAdmin }, apperrors.ErrPermissionDenied},
		{"taken email", func(r *dto.RegisterRequest) { r.Email = "cand@mail.io" }, apperrors.ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest()
			tt.mutate(req)
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	w := newWorld()
	svc := newTestAuthService(w)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "new.user@example.com", Password: "Wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	user, err := w.users.GetUserByEmail(ctx, "new.user@example.com")
	require.NoError(t, err)
	require.NoError(t, w.users.SetActive(ctx, user.ID, false))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "new.user@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestGetCurrentUserProfileID(t *testing.T) {
	w := newWorld()
	svc := newTestAuthService(w)
	ctx := context.Background()

	cand, err := svc.GetCurrentUser(ctx, candidateUserID)
	require.NoError(t, err)
	require.NotNil(t, cand.ProfileID)
	assert.Equal(t, profileID, *cand.ProfileID)

	consultant, err := svc.GetCurrentUser(ctx, consultantUserID)
	require.NoError(t, err)
	require.NotNil(t, consultant.ProfileID)
	assert.Equal(t, consultantID, *consultant.ProfileID)

	admin, err := svc.GetCurrentUser(ctx, adminUserID)
	require.NoError(t, err)
	assert.Nil(t, admin.ProfileID)

	employer, err := svc.GetCurrentUser(ctx, employerUserID)
	require.NoError(t, err)
	assert.Nil(t, employer.ProfileID)
	assert.Equal(t, companyID, *employer.CompanyID)
}
