package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/http/middleware"
	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// CurrentPrincipal достаёт участника, которого положил AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	raw, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := raw.(models.Principal)
	return principal, ok
}

// OptionalPrincipal возвращает nil для анонимного запроса.
func OptionalPrincipal(c *gin.Context) *models.Principal {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return nil
	}
	return &principal
}

// RequirePrincipal отвечает 401, если участник не определён.
func RequirePrincipal(c *gin.Context) (models.Principal, bool) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
	}
	return principal, ok
}

// ParseUUIDParam разбирает UUID из параметра пути и отвечает 400 при ошибке.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, name, c.Param(name))
}

// ParseUUIDQuery разбирает UUID из query параметра и отвечает 400 при ошибке.
func ParseUUIDQuery(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, name, c.Query(name))
}

func parseUUID(c *gin.Context, name, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "параметр "+name+" должен быть валидным UUID")
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON разбирает тело запроса и отвечает 400 при ошибке.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}

// Fail регистрирует ошибку для ErrorHandler и отвечает в общем формате.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.Error(c, err)
}

// ParseIntQuery читает целый query параметр со значением по умолчанию.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// ParseBoolQuery читает логический query параметр со значением по умолчанию.
func ParseBoolQuery(c *gin.Context, key string, fallback bool) bool {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// Page описывает запрошенную страницу списка.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) Limit() int  { return p.PerPage }
func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

// GetPagination читает page и per_page: по умолчанию 1 и 20, per_page не больше 100.
func GetPagination(c *gin.Context) Page {
	page := ParseIntQuery(c, "page", 1)
	perPage := ParseIntQuery(c, "per_page", defaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

// BindOptionalJSON разбирает тело, если оно передано. Пустое тело допустимо.
func BindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return BindJSON(c, req)
}
