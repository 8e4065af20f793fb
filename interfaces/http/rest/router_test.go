package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agenda-sync/application/pipeline"
	"agenda-sync/application/ports"
	"agenda-sync/application/queries"
	"agenda-sync/domain/agenda"
	"agenda-sync/infrastructure/memory"
	"agenda-sync/interfaces/http/rest/handlers"
	"agenda-sync/pkg/observability"
	"agenda-sync/tests/fixtures"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*pipeline.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setup(t *testing.T, runner *mockRunner) (http.Handler, *memory.SnapshotStore, *memory.DigestStore) {
	t.Helper()
	snapshots := memory.NewSnapshotStore()
	digests := memory.NewDigestStore()
	reader := queries.NewAgendaQueries(snapshots, digests, zap.NewNop())

	var syncRunner handlers.SyncRunner
	if runner != nil {
		syncRunner = runner
	}
	router := NewRouter(reader, syncRunner, observability.NewPrometheusMetrics("agenda_sync_test"), true, zap.NewNop())
	return router.Setup(), snapshots, digests
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRouter_Health(t *testing.T) {
	h, _, _ := setup(t, nil)

	rec, body := do(t, h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestRouter_GetRoomAgenda(t *testing.T) {
	h, snapshots, _ := setup(t, nil)
	require.NoError(t, snapshots.WriteSnapshot(context.Background(), "room-Room A.json", agenda.RoomAgendaData{
		Location: "Room A",
		Sessions: []agenda.Session{fixtures.Session("s1", "Room A")},
	}))

	rec, body := do(t, h, http.MethodGet, "/api/v1/rooms/Room%20A")

	require.Equal(t, http.StatusOK, rec.Code)
	var data agenda.RoomAgendaData
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "Room A", data.Location)
	require.Len(t, data.Sessions, 1)
}

func TestRouter_GetRoomAgendaMissingIsEmpty(t *testing.T) {
	h, _, _ := setup(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/rooms/Nowhere")

	require.Equal(t, http.StatusOK, rec.Code)
	var data agenda.RoomAgendaData
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "Nowhere", data.Location)
	assert.Empty(t, data.Sessions)
}

func TestRouter_GetHash(t *testing.T) {
	h, _, digests := setup(t, nil)
	require.NoError(t, digests.PutDigest(context.Background(), "ALL", "abc"))

	rec, body := do(t, h, http.MethodGet, "/api/v1/hashes/ALL")
	require.Equal(t, http.StatusOK, rec.Code)
	var record agenda.HashRecord
	require.NoError(t, json.Unmarshal(body.Data, &record))
	assert.Equal(t, "abc", record.Hash)

	rec, body = do(t, h, http.MethodGet, "/api/v1/hashes/Room%20Z")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestRouter_TriggerSync(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.Anything).Return(&pipeline.Result{RunID: "run-1", RoomsUpdated: 2}, nil).Once()
	runner.On("Run", mock.Anything).Return(nil, ports.ErrRunInProgress).Once()
	h, _, _ := setup(t, runner)

	rec, body := do(t, h, http.MethodPost, "/api/v1/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	var result pipeline.Result
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, 2, result.RoomsUpdated)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/sync")
	assert.Equal(t, http.StatusConflict, rec.Code)
	runner.AssertExpectations(t)
}

func TestRouter_TriggerSyncDisabled(t *testing.T) {
	h, _, _ := setup(t, nil)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/sync")

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _, _ := setup(t, nil)
	do(t, h, http.MethodGet, "/health")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agenda_sync_test_http_requests_total")
}
