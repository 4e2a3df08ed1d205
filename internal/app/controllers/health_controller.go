package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models/dto"
)

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports process and dependency health
type HealthController struct {
	db    Pinger
	cache Pinger
}

// NewHealthController creates a new HealthController. cache may be nil.
func NewHealthController(db Pinger, cache Pinger) *HealthController {
	return &HealthController{db: db, cache: cache}
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Cache    string `json:"cache,omitempty" example:"ok"`
}

// Health pings the database and cache
// @Summary Health check
// @Tags platform
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthResponse} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := c.db.Ping(pingCtx); err != nil {
		resp.Status, resp.Database = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}
	if c.cache != nil {
		resp.Cache = "ok"
		// cache outages degrade analytics only
		if err := c.cache.Ping(pingCtx); err != nil {
			resp.Cache = "unreachable"
		}
	}

	ctx.JSON(status, dto.APIResponse{
		Success:   status == http.StatusOK,
		Data:      resp,
		Timestamp: time.Now(),
	})
}
