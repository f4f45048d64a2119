package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeValidation).HTTPStatus)
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeOversell).HTTPStatus)
	assert.True(t, MetadataFor(CodeOversell).DetailsAllowed)
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("nope")).HTTPStatus)
}

func TestAs(t *testing.T) {
	base := Validation("client name is required")
	wrapped := fmt.Errorf("create order: %w", base)

	got := As(wrapped)
	if assert.NotNil(t, got) {
		assert.Equal(t, CodeValidation, got.Code())
		assert.Equal(t, "client name is required", got.Message())
	}
	assert.True(t, IsCode(wrapped, CodeValidation))
	assert.False(t, IsCode(errors.New("plain"), CodeValidation))
	assert.Nil(t, As(nil))
}

func TestWrap(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(CodeDependency, cause, "session lookup")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY_ERROR: session lookup: redis down", err.Error())
}

func TestWithDetails(t *testing.T) {
	err := New(CodeOversell, "confirm").WithDetails([]string{"Line 1"})
	assert.Equal(t, []string{"Line 1"}, err.Details())

	var nilErr *Error
	assert.Nil(t, nilErr.WithDetails("x"))
	assert.Equal(t, CodeInternal, nilErr.Code())
}
