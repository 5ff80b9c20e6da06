package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden              ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest             ErrorCode = "BAD_REQUEST"
	ErrCodeConflict               ErrorCode = "CONFLICT"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidTransition      ErrorCode = "INVALID_TRANSITION"
	ErrCodeDuplicateEscrow        ErrorCode = "DUPLICATE_ESCROW"
	ErrCodeDuplicateInvoiceNumber ErrorCode = "DUPLICATE_INVOICE_NUMBER"
	ErrCodeCrossEngagement        ErrorCode = "CROSS_ENGAGEMENT"
	ErrCodeUnknownParent          ErrorCode = "UNKNOWN_PARENT"
	ErrCodeUpstreamUnavailable    ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeTooManyRequests        ErrorCode = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с предопределёнными значениями.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeCrossEngagement, ErrCodeUnknownParent:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition, ErrCodeDuplicateEscrow, ErrCodeDuplicateInvoiceNumber:
		return http.StatusConflict
	case ErrCodeUpstreamUnavailable:
		return http.StatusBadGateway
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или пустую строку для нетипизированных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsInvalidTransition(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTransition
}

// Validation создаёт ошибку валидации с произвольным текстом.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// InvalidTransition создаёт ошибку нарушения конечного автомата.
func InvalidTransition(message string) *AppError {
	return New(ErrCodeInvalidTransition, message)
}

var (
	ErrEngagementNotFound   = New(ErrCodeNotFound, "проект не найден")
	ErrDeliverableNotFound  = New(ErrCodeNotFound, "версия результата не найдена")
	ErrFeedbackNotFound     = New(ErrCodeNotFound, "комментарий не найден")
	ErrEscrowNotFound       = New(ErrCodeNotFound, "escrow не найден")
	ErrInvoiceNotFound      = New(ErrCodeNotFound, "счёт не найден")
	ErrPortfolioNotFound    = New(ErrCodeNotFound, "работа портфолио не найдена")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrUserNotFound         = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrDuplicateEscrow      = New(ErrCodeDuplicateEscrow, "escrow для проекта уже существует")
	ErrDuplicateInvoice     = New(ErrCodeDuplicateInvoiceNumber, "номер счёта уже используется")
	ErrCrossEngagement      = New(ErrCodeCrossEngagement, "версии относятся к разным проектам")
	ErrUnknownParent        = New(ErrCodeUnknownParent, "родительский комментарий не относится к этой версии")
	ErrFreelancerBusy       = New(ErrCodeConflict, "фрилансер недоступен для назначения")
	ErrUploadUnavailable    = New(ErrCodeUpstreamUnavailable, "хранилище файлов недоступно")
)
