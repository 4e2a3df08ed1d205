package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/pkg/auth"
)

// TokenValidator resolves an access token to its claims
type TokenValidator interface {
	ValidateAndExtractClaims(token string) (*auth.Claims, error)
}

// Handler upgrades authenticated requests to websocket connections
type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	upgrader gws.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, tokens TokenValidator, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		tokens:   tokens,
		upgrader: NewUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Open a realtime connection
// @Description Upgrades to a WebSocket delivering message, notification and read events for the authenticated user
// @Tags realtime
// @Param token query string false "Access token (alternative to the Authorization header)"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.APIResponse "Missing or invalid token"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		extracted, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err == nil {
			token = extracted
		}
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	claims, err := h.tokens.ValidateAndExtractClaims(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: claims.UserID,
		logger: h.logger,
	}
	if !h.hub.join(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
