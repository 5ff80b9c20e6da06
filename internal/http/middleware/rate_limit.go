package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// RateLimitMiddleware ограничивает число запросов с одного IP.
// По умолчанию: 60 запросов в минуту. Счётчики общие для всех маршрутов,
// на которые навешан один экземпляр middleware.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 60
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		key := c.ClientIP()
		context, err := instance.Get(c, key)
		if err != nil {
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

		if context.Reached {
			response.Abort(c, http.StatusTooManyRequests, apperror.ErrCodeTooManyRequests, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}
