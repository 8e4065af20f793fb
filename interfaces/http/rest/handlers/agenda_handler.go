package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agenda-sync/application/pipeline"
	"agenda-sync/application/ports"
	"agenda-sync/domain/agenda"
	"agenda-sync/pkg/common"
	apperrors "agenda-sync/pkg/errors"
)

// AgendaReader is the read side used by the handlers.
type AgendaReader interface {
	GetAgenda(ctx context.Context) (*agenda.AgendaData, error)
	GetRoomAgenda(ctx context.Context, location string) (*agenda.RoomAgendaData, error)
	GetHash(ctx context.Context, key string) (*agenda.HashRecord, error)
}

// SyncRunner triggers a sync run.
type SyncRunner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// AgendaHandler serves agenda snapshots and manual sync triggers.
type AgendaHandler struct {
	reader AgendaReader
	runner SyncRunner
	logger *zap.Logger
}

// NewAgendaHandler creates a new agenda handler. runner may be nil, in which
// case manual syncs are unavailable.
func NewAgendaHandler(reader AgendaReader, runner SyncRunner, logger *zap.Logger) *AgendaHandler {
	return &AgendaHandler{
		reader: reader,
		runner: runner,
		logger: logger,
	}
}

// GetAgenda handles GET /api/v1/agenda
func (h *AgendaHandler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	data, err := h.reader.GetAgenda(r.Context())
	if err != nil {
		h.logger.Error("Failed to get agenda", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, data)
}

// GetRoomAgenda handles GET /api/v1/rooms/{location}
func (h *AgendaHandler) GetRoomAgenda(w http.ResponseWriter, r *http.Request) {
	location, err := url.PathUnescape(chi.URLParam(r, "location"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid location")
		return
	}

	data, err := h.reader.GetRoomAgenda(r.Context(), location)
	if err != nil {
		h.logger.Error("Failed to get room agenda", zap.String("location", location), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, data)
}

// GetHash handles GET /api/v1/hashes/{key}
func (h *AgendaHandler) GetHash(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid key")
		return
	}

	record, err := h.reader.GetHash(r.Context(), key)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// TriggerSync handles POST /api/v1/sync
func (h *AgendaHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		common.RespondError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "sync is not enabled on this deployment")
		return
	}

	result, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, ports.ErrRunInProgress) {
			common.RespondAppError(w, apperrors.NewConflictError(err.Error()))
			return
		}
		h.logger.Error("Manual sync failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
