package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "agenda-sync/pkg/errors"
)

func TestHTTPSource_Fetch(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessions":[{"id":"1","roomId":3}],"rooms":[{"id":3,"name":"Room A"}],"speakers":[],"questions":[],"categories":[]}`))
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.URL, "AgendaFetcher/1.0", srv.Client(), zap.NewNop())

	payload, err := source.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, payload.Sessions, 1)
	assert.Equal(t, "3", payload.Sessions[0].RoomID.String())
	assert.Equal(t, "AgendaFetcher/1.0", gotUserAgent)
}

func TestHTTPSource_WrongTypedEntryDoesNotFailFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessions":[{"id":"1","roomId":3},{"id":"2","title":12345,"roomId":3}],"rooms":[{"id":3,"name":"Room A"}],"speakers":[],"questions":[],"categories":[]}`))
	}))
	defer srv.Close()

	payload, err := NewHTTPSource(srv.URL, "", srv.Client(), zap.NewNop()).Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, payload.Sessions, 1)
	assert.Equal(t, "1", payload.Sessions[0].ID.String())
	require.Len(t, payload.Rejected, 1)
	assert.Equal(t, "2", payload.Rejected[0].ID)
}

func TestHTTPSource_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "", srv.Client(), zap.NewNop()).Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFetch))
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Details["status"])
	assert.Equal(t, "maintenance", appErr.Details["body"])
}

func TestHTTPSource_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessions": [`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "", srv.Client(), zap.NewNop()).Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFetch))
}

func TestHTTPSource_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPSource(srv.URL, "", srv.Client(), zap.NewNop()).Fetch(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
