package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/engagement-backend/internal/http/response"
	"github.com/ignatzorin/engagement-backend/internal/logger"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// ErrorHandler логирует ошибки, добавленные через c.Error, и отвечает
// за хэндлер, если тот сам ничего не записал.
// Клиентские ошибки пишутся в Warn, остальные в Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, ginErr := range c.Errors {
			entry := logger.Entry(logrus.Fields{
				"path":   c.FullPath(),
				"method": c.Request.Method,
				"code":   apperror.CodeOf(ginErr.Err),
			}).WithError(ginErr.Err)

			var appErr *apperror.AppError
			if errors.As(ginErr.Err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
				entry.Warn("http: ошибка запроса")
			} else {
				entry.Error("http: ошибка запроса")
			}
		}

		if c.Writer.Written() {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}

// Recovery превращает панику хэндлера в INTERNAL_ERROR в общем формате ответа.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Entry(logrus.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
			"panic":  recovered,
		}).Error("http: паника в обработчике")
		response.Abort(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
	})
}
