package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrTokenNotFound, "refresh token not found")

	assert.True(t, errors.Is(err, ErrTokenNotFound))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "refresh token not found", err.Message)
	assert.Equal(t, "token not found", ErrTokenNotFound.Message)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrForbidden, "admins only"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrForbidden.Code, appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestTaxonomyStatuses(t *testing.T) {
	cases := map[*Error]int{
		ErrNotFound:           http.StatusNotFound,
		ErrUserNotFound:       http.StatusNotFound,
		ErrTokenNotFound:      http.StatusNotFound,
		ErrConflict:           http.StatusBadRequest,
		ErrInvalidCredentials: http.StatusBadRequest,
		ErrInvalidToken:       http.StatusUnauthorized,
		ErrForbidden:          http.StatusForbidden,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.Status, err.Code)
	}
}
