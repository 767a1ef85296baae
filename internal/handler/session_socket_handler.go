package handler

import (
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/pkg/serverutils"
	"concierge-be/internal/repository/memory"
	internalWS "concierge-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// SessionSocketHandler streams a hosted session's effects and accepts its commands.
type SessionSocketHandler struct {
	sessions  *memory.SessionRepository
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewSessionSocketHandler(sessions *memory.SessionRepository, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *SessionSocketHandler {
	return &SessionSocketHandler{
		sessions:  sessions,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs upgrades GET /ws/session/:id. With a JWT secret configured the token
// comes from the "token" query parameter or the Authorization header.
func (h *SessionSocketHandler) ServeWs(c *fiber.Ctx) error {
	if h.jwtSecret != "" {
		// Priority 1: Query Param (browsers cannot set headers on upgrade)
		tokenStr := c.Query("token")
		// Priority 2: Authorization Header
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				tokenStr = authHeader[7:]
			}
		}
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
		}

		token, err := serverutils.ParseToken(tokenStr, h.jwtSecret)
		if err != nil || !token.Valid {
			h.logger.Warn("SessionSocketHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	if _, ok := h.sessions.Get(sessionID); !ok {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionSocketHandler", "Socket attached", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionSocketHandler", "Socket detached", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SessionSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/session/:id", h.ServeWs)
}
