package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметры с указанными именами являются валидными UUID.
// Использование: group.GET("/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				response.Abort(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, "параметр "+name+" должен быть валидным UUID")
				return
			}
		}
		c.Next()
	}
}
