package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	validToken   = "header.payload.valid"
	adminToken   = "header.payload.admin"
	expiredToken = "header.payload.expired"
)

type stubTokens struct{}

func (stubTokens) ValidateAndExtractClaims(token string) (*auth.Claims, error) {
	switch token {
	case validToken:
		return &auth.Claims{UserID: 7, Email: "cand@mail.io", Role: models.RoleCandidate}, nil
	case adminToken:
		return &auth.Claims{UserID: 1, Email: "admin@mail.io", Role: models.RoleAdmin}, nil
	case expiredToken:
		return nil, apperrors.ErrTokenExpired
	}
	return nil, apperrors.ErrTokenInvalid
}

type response struct {
	Success bool              `json:"success"`
	Error   *dto.ErrorDetail  `json:"error"`
	Data    map[string]string `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var r response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func whoAmI(c *gin.Context) {
	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"user": "anonymous"}, ""))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"user": fmt.Sprint(actor.UserID),
		"role": string(actor.Role),
	}, ""))
}

func authRouter() *gin.Engine {
	m := NewAuthMiddleware(stubTokens{})
	r := gin.New()
	r.GET("/private", m.JWTAuth(), whoAmI)
	r.GET("/public", m.OptionalAuth(), whoAmI)
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), whoAmI)
	return r
}

func TestJWTAuth(t *testing.T) {
	router := authRouter()

	tests := []struct {
		name     string
		url      string
		header   string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{"bearer header", "/private", "Bearer " + validToken, http.StatusOK, ""},
		{"raw token", "/private", validToken, http.StatusOK, ""},
		{"quoted bearer", "/private", `"Bearer ` + validToken + `"`, http.StatusOK, ""},
		{"query token", "/private?token=" + validToken, "", http.StatusOK, ""},
		{"missing", "/private", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"bad format", "/private", "Basic abc", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"expired", "/private", "Bearer " + expiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"invalid", "/private", "Bearer a.b.c", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			body := decode(t, w)
			if tt.wantErr != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.wantErr, body.Error.Code)
				return
			}
			assert.Equal(t, "7", body.Data["user"])
			assert.Equal(t, string(models.RoleCandidate), body.Data["role"])
		})
	}
}

type stubUsers map[int64]*models.User

func (s stubUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func TestJWTAuthRefusesDisabledAccountOnWrites(t *testing.T) {
	users := stubUsers{7: {ID: 7, Role: models.RoleCandidate, IsActive: false}}
	m := NewAuthMiddleware(stubTokens{}).WithAccountCheck(users)
	r := gin.New()
	r.GET("/private", m.JWTAuth(), whoAmI)
	r.POST("/private", m.JWTAuth(), whoAmI)

	call := func(method, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// reads trust the token until it expires
	assert.Equal(t, http.StatusOK, call(http.MethodGet, validToken).Code)

	w := call(http.MethodPost, validToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeAccountDisabled, decode(t, w).Error.Code)

	users[7].IsActive = true
	assert.Equal(t, http.StatusOK, call(http.MethodPost, validToken).Code)

	// admin token for a user that was removed
	w = call(http.MethodPost, adminToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decode(t, w).Error.Code)
}

func TestOptionalAuth(t *testing.T) {
	router := authRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", decode(t, w).Data["user"])

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "7", decode(t, w).Data["user"])

	// a broken token is not silently downgraded to anonymous
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer x.y.z")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleRequired(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decode(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{"not found", fmt.Errorf("get job: %w", apperrors.ErrJobNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("only the owner"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"not participant", apperrors.ErrNotParticipant, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"transition", fmt.Errorf("%w: SUBMITTED -> HIRED", apperrors.ErrInvalidStatusTransition), http.StatusBadRequest, dto.ErrorCodeInvalidTransition},
		{"bad request", apperrors.NewBadRequestError("no profile"), http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled},
		{"duplicate", apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"concurrent", apperrors.NewConflictError("status changed"), http.StatusConflict, dto.ErrorCodeConflict},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCode, StatusForError(tt.err))
			body := decode(t, w)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestHandleAPIErrorUsesCustomMessageAndDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/x", nil)

	HandleAPIError(c, apperrors.NewValidationError("value does not match schema", map[string]interface{}{"value": "must be integer"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "value does not match schema", body.Error.Message)
	assert.Equal(t, map[string]interface{}{"value": "must be integer"}, body.Error.Details)

	// wrapped internals never leak
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	HandleAPIError(c, fmt.Errorf("query failed: password=secret"))
	assert.NotContains(t, w.Body.String(), "secret")
}

type bindTarget struct {
	Name  string `json:"name" binding:"required,max=5"`
	Count int    `json:"count" binding:"min=1"`
}

func TestBindAndValidate(t *testing.T) {
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var body bindTarget
		if !BindAndValidate(c, &body) {
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{"name": body.Name}, ""))
	})

	post := func(payload string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"name":"ok","count":2}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(`{"name":"way too long","count":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, body.Error.Code)
	assert.Contains(t, body.Error.Details, "name")
	assert.Contains(t, body.Error.Details, "count")

	w = post(`{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidRequest, decode(t, w).Error.Code)
}

type applyTarget struct {
	JobID  int64    `json:"jobId" binding:"required"`
	Skills []string `json:"skills" binding:"max=2"`
}

func TestBindAndValidateReportsJSONNames(t *testing.T) {
	UseJSONFieldNames()

	r := gin.New()
	r.POST("/apply", func(c *gin.Context) {
		var body applyTarget
		if BindAndValidate(c, &body) {
			c.Status(http.StatusNoContent)
		}
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(`{"skills":["go","sql","k8s"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	details, ok := decode(t, w).Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "jobId is required", details["jobId"])
	assert.Equal(t, "skills must be at most 2 items", details["skills"])
}

type maintenanceFlag bool

func (m maintenanceFlag) MaintenanceEnabled(context.Context) bool { return bool(m) }

func TestMaintenance(t *testing.T) {
	build := func(on bool) *gin.Engine {
		r := gin.New()
		auth := NewAuthMiddleware(stubTokens{})
		r.Use(auth.OptionalAuth(), Maintenance(maintenanceFlag(on)))
		r.GET("/jobs", whoAmI)
		r.POST("/jobs", whoAmI)
		return r
	}

	do := func(r *gin.Engine, method, token string) int {
		req := httptest.NewRequest(method, "/jobs", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	on := build(true)
	assert.Equal(t, http.StatusOK, do(on, http.MethodGet, validToken))
	assert.Equal(t, http.StatusServiceUnavailable, do(on, http.MethodPost, validToken))
	assert.Equal(t, http.StatusServiceUnavailable, do(on, http.MethodPost, ""))
	assert.Equal(t, http.StatusOK, do(on, http.MethodPost, adminToken))

	off := build(false)
	assert.Equal(t, http.StatusOK, do(off, http.MethodPost, validToken))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()), RequestLogger(zerolog.Nop()), Metrics())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decode(t, w).Error.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.hireloop.io"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.hireloop.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://app.hireloop.io", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
