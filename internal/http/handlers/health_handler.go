package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// Pinger проверяет доступность базы.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthStatus представляет результат проверки.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		_ = c.Error(err)
		response.Fail(c, http.StatusServiceUnavailable, apperror.ErrCodeUpstreamUnavailable, "база данных недоступна")
		return
	}

	response.Success(c, "", HealthStatus{
		Status: "healthy",
		Checks: map[string]string{"database": "healthy"},
	})
}
