package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:               http.StatusNotFound,
		ErrCodeForbidden:              http.StatusForbidden,
		ErrCodeValidation:             http.StatusBadRequest,
		ErrCodeInvalidTransition:      http.StatusConflict,
		ErrCodeDuplicateEscrow:        http.StatusConflict,
		ErrCodeDuplicateInvoiceNumber: http.StatusConflict,
		ErrCodeCrossEngagement:        http.StatusBadRequest,
		ErrCodeUnknownParent:          http.StatusBadRequest,
		ErrCodeUpstreamUnavailable:    http.StatusBadGateway,
		ErrCodeTooManyRequests:        http.StatusTooManyRequests,
		ErrCodeInternal:               http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, string(code))
	}
}

func TestWrappedErrorsKeepCode(t *testing.T) {
	err := fmt.Errorf("repository: %w", ErrEscrowNotFound)

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrEscrowNotFound))
	assert.False(t, errors.Is(err, ErrInvoiceNotFound))
	assert.Equal(t, ErrCodeNotFound, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrCodeUpstreamUnavailable, "хранилище недоступно")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
