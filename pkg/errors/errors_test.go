package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Конструктор принимает четыре аргумента; детали почти всегда nil.
func TestNewHttpError(t *testing.T) {
	cause := errors.New("исходная причина")

	httpErr := NewHttpError(http.StatusBadRequest, "Неверный ID", cause, nil)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "Неверный ID", httpErr.Error())
	assert.Nil(t, httpErr.Details)

	// Исходная причина доступна через errors.Is.
	assert.ErrorIs(t, httpErr, cause)
}

func TestNewHttpErrorWithDetails(t *testing.T) {
	details := map[string]string{"field": "email"}

	httpErr := NewHttpError(http.StatusUnprocessableEntity, "Ошибка валидации", ErrBadRequest, details)
	assert.Equal(t, details, httpErr.Details)
	assert.ErrorIs(t, httpErr, ErrBadRequest)
}
