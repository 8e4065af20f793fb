package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewStoreError("GetItem", cause)

	assert.Contains(t, err.Error(), "STORE")
	assert.Contains(t, err.Error(), "GetItem")
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, stderrors.Is(err, cause))
}

func TestIsType_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("room A: %w", NewPublishError("Room A", "HTTP 500", nil))

	assert.True(t, IsType(err, ErrorTypePublish))
	assert.False(t, IsType(err, ErrorTypeStore))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypePublish))
}

func TestNewNormalizationError(t *testing.T) {
	err := NewNormalizationError("#3", "missing startsAt")

	assert.Equal(t, ErrorTypeNormalization, err.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Contains(t, err.Message, `"#3"`)
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("app error keeps its type", func(t *testing.T) {
		err := Wrap(NewNotFoundError("hash ALL"), "get hash")
		require.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "get hash: hash ALL not found")
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		err := Wrapf(fmt.Errorf("boom"), "step %d", 2)
		appErr := GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, ErrorTypeInternal, appErr.Type)
		assert.Equal(t, "step 2", appErr.Message)
	})
}

func TestWithDetail(t *testing.T) {
	err := NewFetchError("feed returned 503", nil).WithDetail("status", 503)
	assert.Equal(t, 503, err.Details["status"])
}
