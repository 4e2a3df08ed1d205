package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
)

const maxPerDaySchema = `{"type":"integer","minimum":0,"maximum":1000}`

func (w *world) adminService() AdminService {
	return NewAdminService(w.users, w.tokens, w.config, testLogger)
}

func TestUpsertConfigValidatesAgainstSchema(t *testing.T) {
	w := newWorld()
	svc := w.adminService()
	ctx := context.Background()

	cfg, err := svc.UpsertConfig(ctx, adminActor, models.ConfigMaxApplicationsPerDay, &dto.UpsertConfigRequest{
		Value:       json.RawMessage(`20`),
		Description: "Daily application cap",
		Schema:      json.RawMessage(maxPerDaySchema),
	})
	require.NoError(t, err)
	assert.Equal(t, adminUserID, *cfg.UpdatedBy)

	// the stored schema keeps applying when the request omits one
	_, err = svc.UpsertConfig(ctx, adminActor, models.ConfigMaxApplicationsPerDay, &dto.UpsertConfigRequest{Value: json.RawMessage(`"lots"`)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "value")

	_, err = svc.UpsertConfig(ctx, adminActor, models.ConfigMaxApplicationsPerDay, &dto.UpsertConfigRequest{Value: json.RawMessage(`5000`)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, err := svc.GetConfig(ctx, models.ConfigMaxApplicationsPerDay, false)
	require.NoError(t, err)
	assert.JSONEq(t, `20`, string(stored.Value))
}

func TestUpsertConfigRejectsBadInput(t *testing.T) {
	w := newWorld()
	svc := w.adminService()
	ctx := context.Background()

	_, err := svc.UpsertConfig(ctx, adminActor, "Bad Key!", &dto.UpsertConfigRequest{Value: json.RawMessage(`1`)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.UpsertConfig(ctx, adminActor, "feature.flag", &dto.UpsertConfigRequest{
		Value:  json.RawMessage(`true`),
		Schema: json.RawMessage(`{"type": 12}`),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestPublicConfigHidesPrivateEntries(t *testing.T) {
	w := newWorld()
	svc := w.adminService()
	ctx := context.Background()

	_, err := svc.UpsertConfig(ctx, adminActor, "support.email", &dto.UpsertConfigRequest{Value: json.RawMessage(`"help@hireloop.app"`), IsPublic: true})
	require.NoError(t, err)
	_, err = svc.UpsertConfig(ctx, adminActor, "internal.secret_limit", &dto.UpsertConfigRequest{Value: json.RawMessage(`3`)})
	require.NoError(t, err)

	public, err := svc.ListConfigs(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "support.email", public[0].Key)

	_, err = svc.GetConfig(ctx, "internal.secret_limit", true)
	assert.ErrorIs(t, err, apperrors.ErrConfigurationNotFound)

	require.NoError(t, svc.DeleteConfig(ctx, "internal.secret_limit"))
	assert.ErrorIs(t, svc.DeleteConfig(ctx, "internal.secret_limit"), apperrors.ErrConfigurationNotFound)
}

func TestSetUserActive(t *testing.T) {
	w := newWorld()
	svc := w.adminService()
	ctx := context.Background()
	require.NoError(t, w.tokens.CreateToken(ctx, "refresh-1", candidateUserID, time.Now().Add(time.Hour)))

	_, err := svc.SetUserActive(ctx, adminActor, adminUserID, false)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	user, err := svc.SetUserActive(ctx, adminActor, candidateUserID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.True(t, w.tokens.rows["refresh-1"].revoked)

	role := models.RoleCandidate
	inactive := false
	users, total, err := svc.ListUsers(ctx, models.UserFilter{Role: &role, Active: &inactive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, candidateUserID, users[0].ID)
}

func TestSettingsFallbacks(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	assert.Equal(t, 0, w.settings.MaxApplicationsPerDay(ctx))
	assert.True(t, models.DefaultCommissionRate.Equal(w.settings.DefaultCommissionRate(ctx)))
	assert.False(t, w.settings.MaintenanceEnabled(ctx))

	w.config.set(models.ConfigMaxApplicationsPerDay, `"ten"`)
	assert.Equal(t, 0, w.settings.MaxApplicationsPerDay(ctx))

	w.config.set(models.ConfigMaxApplicationsPerDay, `10`)
	w.config.set(models.ConfigDefaultCommissionRate, `"0.2"`)
	w.config.set(models.ConfigMaintenanceMode, `true`)
	assert.Equal(t, 10, w.settings.MaxApplicationsPerDay(ctx))
	assert.True(t, decimal.RequireFromString("0.2").Equal(w.settings.DefaultCommissionRate(ctx)))
	assert.True(t, w.settings.MaintenanceEnabled(ctx))
}

func TestConsultantProfiles(t *testing.T) {
	w := newWorld()
	w.config.set(models.ConfigDefaultCommissionRate, `0.1`)
	w.users.byID[8] = &models.User{ID: 8, Role: models.RoleConsultant, IsActive: true}
	svc := NewConsultantService(w.consultants, w.applications, w.settings, testLogger)
	ctx := context.Background()
	newcomer := models.Actor{UserID: 8, Role: models.RoleConsultant}

	created, err := svc.CreateProfile(ctx, newcomer, &dto.CreateConsultantRequest{Bio: "Tech recruiter", Specializations: []string{"golang", " devops "}})
	require.NoError(t, err)
	assert.Equal(t, "0.1", created.CommissionRate.String())

	_, err = svc.CreateProfile(ctx, newcomer, &dto.CreateConsultantRequest{})
	assert.ErrorIs(t, err, apperrors.ErrProfileExists)

	_, err = svc.CreateProfile(ctx, employerActor, &dto.CreateConsultantRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	rate := decimal.RequireFromString("0.3")
	_, err = svc.UpdateConsultant(ctx, newcomer, created.ID, &dto.UpdateConsultantRequest{CommissionRate: &rate})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := svc.UpdateConsultant(ctx, adminActor, created.ID, &dto.UpdateConsultantRequest{CommissionRate: &rate})
	require.NoError(t, err)
	assert.True(t, rate.Equal(updated.CommissionRate))

	tooHigh := decimal.NewFromInt(2)
	_, err = svc.UpdateConsultant(ctx, adminActor, created.ID, &dto.UpdateConsultantRequest{CommissionRate: &tooHigh})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListPlacements(t *testing.T) {
	w := newWorld()
	w.seedApplication(models.StatusHired)
	svc := NewConsultantService(w.consultants, w.applications, w.settings, testLogger)
	ctx := context.Background()

	placements, total, err := svc.ListPlacements(ctx, consultantActor, consultantID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, placements, 1)

	_, _, err = svc.ListPlacements(ctx, employerActor, consultantID, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCandidateProfiles(t *testing.T) {
	w := newWorld()
	delete(w.candidates.byID, profileID)
	svc := NewCandidateService(w.candidates, nil, testLogger)
	ctx := context.Background()

	created, err := svc.CreateProfile(ctx, candidateActor, &dto.CandidateProfileRequest{Headline: "Gopher", Skills: []string{"Go", "gRPC"}})
	require.NoError(t, err)
	assert.True(t, created.OpenToWork)

	_, err = svc.CreateProfile(ctx, candidateActor, &dto.CandidateProfileRequest{Headline: "Again"})
	assert.ErrorIs(t, err, apperrors.ErrProfileExists)

	_, err = svc.GetProfile(ctx, otherCandActor, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	seen, err := svc.GetProfile(ctx, employerActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gopher", seen.Headline)

	_, _, err = svc.SearchProfiles(ctx, candidateActor, models.CandidateFilter{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.DeleteMyProfile(ctx, candidateActor))
	_, err = svc.GetMyProfile(ctx, candidateActor)
	assert.ErrorIs(t, err, apperrors.ErrCandidateNotFound)
}
