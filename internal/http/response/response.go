package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// Response - единый конверт всех ответов API.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Page - данные постраничного списка.
type Page struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// NewPagination считает число страниц; для пустого списка страниц ноль.
func NewPagination(page, perPage, total int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, TotalPages: pages, TotalItems: total}
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func Paginated(c *gin.Context, items interface{}, page, perPage, total int) {
	Success(c, "", Page{
		Items:      items,
		Pagination: NewPagination(page, perPage, total),
	})
}

// Error выводит AppError с его кодом и статусом. Остальные ошибки
// отдаются как INTERNAL_ERROR без текста драйвера.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Fail(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}

	Fail(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
}

// Fail выводит ошибку с явным статусом и кодом.
func Fail(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(code),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	})
}

// Abort прерывает цепочку middleware с ответом об ошибке.
func Abort(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	Fail(c, status, code, message)
	c.Abort()
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}
