package handlers

import (
	"context"
	"net/http"

	"template-backend/application/services"
	"template-backend/infrastructure/webservice"

	"go.uber.org/zap"
)

// Syncer runs one pull from the remote service
type Syncer interface {
	Sync(ctx context.Context) (*services.SyncResult, error)
}

// SyncHandler triggers remote synchronisation
type SyncHandler struct {
	responder
	syncer Syncer
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncer Syncer, converter *webservice.ConverterFactory, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		responder: responder{converter: converter, logger: logger},
		syncer:    syncer,
	}
}

// Sync handles POST /sync
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.Sync(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
