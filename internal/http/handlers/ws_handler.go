package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/http/middleware"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.TokenParser
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Origin проверяется по тому же списку, что и CORS.
func NewWSHandler(hub *ws.Hub, tokens middleware.TokenParser, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "access токен обязателен")
		return
	}

	principal, err := h.tokens.ParseAccess(rawToken)
	if err != nil || principal.ID == uuid.Nil {
		response.Unauthorized(c, "невалидный access токен")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Entry(logrus.Fields{"user_id": principal.ID}).WithError(err).Warn("ws: не удалось установить соединение")
		return
	}

	ws.NewClient(conn, h.hub, principal.ID).Run(c.Request.Context())
}
