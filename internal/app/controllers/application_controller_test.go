package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/middleware"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubApplications struct {
	apply        func(actor models.Actor, req *dto.ApplyRequest) (*models.Application, error)
	get          func(actor models.Actor, id int64) (*models.Application, error)
	changeStatus func(actor models.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.Application, error)

	listStatus *models.ApplicationStatus
	listPage   int
	listSize   int
}

func (s *stubApplications) Apply(_ context.Context, actor models.Actor, req *dto.ApplyRequest) (*models.Application, error) {
	return s.apply(actor, req)
}

func (s *stubApplications) GetApplication(_ context.Context, actor models.Actor, id int64) (*models.Application, error) {
	return s.get(actor, id)
}

func (s *stubApplications) ListMyApplications(_ context.Context, _ models.Actor, status *models.ApplicationStatus, page, size int) ([]*models.Application, int64, error) {
	s.listStatus, s.listPage, s.listSize = status, page, size
	return []*models.Application{{ID: 1, Status: models.StatusSubmitted}}, 11, nil
}

func (s *stubApplications) ListJobApplications(context.Context, models.Actor, int64, *models.ApplicationStatus, int, int) ([]*models.Application, int64, error) {
	return nil, 0, nil
}

func (s *stubApplications) ChangeStatus(_ context.Context, actor models.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	return s.changeStatus(actor, id, req)
}

func (s *stubApplications) GetHistory(context.Context, models.Actor, int64) ([]*models.StatusHistory, error) {
	return nil, nil
}

func (s *stubApplications) RateApplication(context.Context, models.Actor, int64, int) (*models.Application, error) {
	return nil, apperrors.ErrApplicationNotFound
}

// asUser stands in for JWTAuth
func asUser(id int64, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func applicationRouter(svc *stubApplications, actor gin.HandlerFunc) *gin.Engine {
	ctrl := NewApplicationController(svc)
	r := gin.New()
	g := r.Group("")
	if actor != nil {
		g.Use(actor)
	}
	g.POST("/applications", ctrl.Apply)
	g.GET("/applications/me", ctrl.ListMyApplications)
	g.GET("/applications/:id", ctrl.GetApplication)
	g.PATCH("/applications/:id/status", ctrl.ChangeStatus)
	g.PUT("/applications/:id/rating", ctrl.RateApplication)
	return r
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func perform(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestApplyReturnsCreatedWithNextStatuses(t *testing.T) {
	svc := &stubApplications{
		apply: func(actor models.Actor, req *dto.ApplyRequest) (*models.Application, error) {
			assert.Equal(t, int64(7), actor.UserID)
			assert.Equal(t, int64(10), req.JobID)
			return &models.Application{ID: 3, JobID: req.JobID, Status: models.StatusSubmitted}, nil
		},
	}
	r := applicationRouter(svc, asUser(7, models.RoleCandidate))

	w, env := perform(t, r, http.MethodPost, "/applications", `{"jobId":10,"coverLetter":"hello"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var detail struct {
		ID           int64                      `json:"id"`
		Status       models.ApplicationStatus   `json:"status"`
		NextStatuses []models.ApplicationStatus `json:"nextStatuses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, int64(3), detail.ID)
	assert.Equal(t, models.StatusSubmitted, detail.Status)
	assert.Equal(t, models.NextStatuses(models.StatusSubmitted), detail.NextStatuses)
}

func TestApplyValidation(t *testing.T) {
	called := false
	svc := &stubApplications{
		apply: func(models.Actor, *dto.ApplyRequest) (*models.Application, error) {
			called = true
			return nil, nil
		},
	}
	r := applicationRouter(svc, asUser(7, models.RoleCandidate))

	w, env := perform(t, r, http.MethodPost, "/applications", `{"coverLetter":"no job"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	w, env = perform(t, r, http.MethodPost, "/applications", `{"jobId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidRequest, env.Error.Code)

	assert.False(t, called)
}

func TestApplyMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"duplicate", apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"missing job", apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"not candidate", apperrors.NewForbiddenError("only candidates can apply to jobs"), http.StatusForbidden, dto.ErrorCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubApplications{
				apply: func(models.Actor, *dto.ApplyRequest) (*models.Application, error) {
					return nil, tt.err
				},
			}
			r := applicationRouter(svc, asUser(7, models.RoleCandidate))

			w, env := perform(t, r, http.MethodPost, "/applications", `{"jobId":10}`)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestGetApplicationRejectsBadID(t *testing.T) {
	svc := &stubApplications{
		get: func(models.Actor, int64) (*models.Application, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	r := applicationRouter(svc, asUser(7, models.RoleCandidate))

	for _, path := range []string{"/applications/abc", "/applications/0", "/applications/-4"} {
		w, env := perform(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		require.NotNil(t, env.Error)
		assert.Equal(t, "id", env.Error.Field)
	}
}

func TestGetApplicationRequiresActor(t *testing.T) {
	svc := &stubApplications{}
	r := applicationRouter(svc, nil)

	w, env := perform(t, r, http.MethodGet, "/applications/5", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)
}

func TestListMyApplicationsPassesFilterAndPage(t *testing.T) {
	svc := &stubApplications{}
	r := applicationRouter(svc, asUser(7, models.RoleCandidate))

	w, env := perform(t, r, http.MethodGet, "/applications/me?status=SHORTLISTED&page=2&size=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.listStatus)
	assert.Equal(t, models.StatusShortlisted, *svc.listStatus)
	assert.Equal(t, 2, svc.listPage)
	assert.Equal(t, 5, svc.listSize)

	var page dto.PaginatedResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(11), page.Pagination.TotalItems)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestListMyApplicationsRejectsUnknownStatus(t *testing.T) {
	svc := &stubApplications{}
	r := applicationRouter(svc, asUser(7, models.RoleCandidate))

	w, _ := perform(t, r, http.MethodGet, "/applications/me?status=ARCHIVED", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.listStatus)
}

func TestChangeStatus(t *testing.T) {
	t.Run("forwards the transition", func(t *testing.T) {
		svc := &stubApplications{
			changeStatus: func(actor models.Actor, id int64, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
				assert.Equal(t, models.RoleEmployer, actor.Role)
				assert.Equal(t, int64(9), id)
				assert.Equal(t, models.StatusRejected, req.Status)
				assert.Equal(t, "not a fit", req.RejectionReason)
				return &models.Application{ID: id, Status: req.Status}, nil
			},
		}
		r := applicationRouter(svc, asUser(2, models.RoleEmployer))

		w, env := perform(t, r, http.MethodPatch, "/applications/9/status", `{"status":"REJECTED","rejectionReason":"not a fit"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Status changed", env.Message)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc := &stubApplications{
			changeStatus: func(models.Actor, int64, *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
				return nil, apperrors.ErrInvalidStatusTransition
			},
		}
		r := applicationRouter(svc, asUser(2, models.RoleEmployer))

		w, env := perform(t, r, http.MethodPatch, "/applications/9/status", `{"status":"HIRED"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.ErrorCodeInvalidTransition, env.Error.Code)
	})
}

func TestRateApplicationValidatesRange(t *testing.T) {
	svc := &stubApplications{}
	r := applicationRouter(svc, asUser(2, models.RoleEmployer))

	w, _ := perform(t, r, http.MethodPut, "/applications/9/rating", `{"rating":6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, r, http.MethodPut, "/applications/9/rating", `{"rating":4}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
