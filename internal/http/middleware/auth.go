package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// ContextPrincipalKey - ключ участника запроса в gin.Context.
const ContextPrincipalKey = "principal"

// TokenParser извлекает участника из access токена.
type TokenParser interface {
	ParseAccess(token string) (models.Principal, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, "требуется авторизация")
			return
		}

		principal, err := tokens.ParseAccess(raw)
		if err != nil || principal.ID == uuid.Nil {
			response.Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, "токен невалиден")
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// OptionalAuth кладёт участника в контекст, если передан валидный токен.
// Запрос без токена или с плохим токеном обрабатывается как анонимный.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if principal, err := tokens.ParseAccess(raw); err == nil && principal.ID != uuid.Nil {
				c.Set(ContextPrincipalKey, principal)
			}
		}
		c.Next()
	}
}

// RequireRoles пропускает только участников с одной из перечисленных ролей.
// Ставится после AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		raw, exists := c.Get(ContextPrincipalKey)
		principal, ok := raw.(models.Principal)
		if !exists || !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, "требуется авторизация")
			return
		}

		if _, ok := allowed[principal.Role]; !ok {
			response.Abort(c, http.StatusForbidden, apperror.ErrCodeForbidden, "недостаточно прав")
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
